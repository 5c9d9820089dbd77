package device

import (
	"fmt"
	"sync"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"

	"github.com/cwbudde/algo-gpukern/internal/cpu"
)

// Config controls a device context.
type Config struct {
	// Workers is the number of host goroutines executing blocks.
	Workers int

	// StreamDepth is the number of commands a stream queues before Launch
	// blocks.
	StreamDepth int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig uses one worker per logical host CPU.
func DefaultConfig() Config {
	return Config{
		Workers:     cpu.DetectFeatures().Cores,
		StreamDepth: 64,
	}
}

// WithWorkers sets the number of block workers.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

// WithStreamDepth sets the stream queue depth.
func WithStreamDepth(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.StreamDepth = n
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Info describes the device behind a context.
type Info struct {
	Name               string
	Vendor             string
	Architecture       string
	SIMD               string
	Workers            int
	WarpSize           int
	MaxThreadsPerBlock int
	SharedMemoryBytes  int
}

// Context owns the worker pool that executes launches. A Context is safe
// for concurrent use by multiple streams.
type Context struct {
	cfg  Config
	pool *workerpool.Pool
	info Info

	mu     sync.Mutex
	open   int
	closed bool
}

// NewContext creates a context and starts its workers.
func NewContext(opts ...Option) *Context {
	cfg := ApplyOptions(opts...)
	feats := cpu.DetectFeatures()

	p := workerpool.New(cfg.Workers)
	return &Context{
		cfg:  cfg,
		pool: p,
		info: Info{
			Name:               "host-" + feats.Architecture,
			Vendor:             "algo-gpukern",
			Architecture:       feats.Architecture,
			SIMD:               feats.Level().String(),
			Workers:            p.NumWorkers(),
			WarpSize:           WarpSize,
			MaxThreadsPerBlock: MaxThreadsPerBlock,
			SharedMemoryBytes:  MaxSharedFloats * 4,
		},
	}
}

// Device reports the device description.
func (c *Context) Device() Info {
	return c.info
}

// NewStream creates an in-order command queue on c.
func (c *Context) NewStream() (*Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContextClosed
	}
	c.open++
	return newStream(c.pool, c.cfg.StreamDepth, c.streamClosed), nil
}

func (c *Context) streamClosed() {
	c.mu.Lock()
	c.open--
	c.mu.Unlock()
}

// Close stops the workers. It fails with ErrStreamsOpen while any stream
// created from c is still open, since those may have launches in flight.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if c.open > 0 {
		return fmt.Errorf("%w: %d", ErrStreamsOpen, c.open)
	}
	c.closed = true
	c.pool.Close()
	return nil
}
