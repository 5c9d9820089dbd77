package normalize

import "github.com/cwbudde/algo-gpukern/device"

// Config holds Normalizer settings.
type Config struct {
	Geometry Geometry
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns 64 blocks of 512 threads.
func DefaultConfig() Config {
	return Config{
		Geometry: Geometry{Blocks: 64, ThreadsPerBlock: 512},
	}
}

// WithGeometry sets the launch geometry used for every stage.
func WithGeometry(g Geometry) Option {
	return func(cfg *Config) {
		cfg.Geometry = g
	}
}

// Normalizer sequences the three stages on a stream with a fixed geometry.
type Normalizer struct {
	cfg Config
}

// New returns a Normalizer, or ErrInvalidGeometry.
func New(opts ...Option) (*Normalizer, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.Geometry.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{cfg: cfg}, nil
}

// Geometry returns the configured launch geometry.
func (nz *Normalizer) Geometry() Geometry {
	return nz.cfg.Geometry
}

// Run queues product-scale into out followed by Normalize on out.
func (nz *Normalizer) Run(s *device.Stream, raw, impulse, out *device.Buffer[complex64], peak *device.AtomicFloat32, paddedLength int) error {
	if err := ProductScale(s, raw, impulse, out, paddedLength, nz.cfg.Geometry); err != nil {
		return err
	}
	return nz.Normalize(s, out, peak, paddedLength)
}

// Normalize queues a reset of peak to 0, the maximum reduction and the
// divide, in that order.
func (nz *Normalizer) Normalize(s *device.Stream, signal *device.Buffer[complex64], peak *device.AtomicFloat32, paddedLength int) error {
	if err := s.Host(func() { peak.Store(0) }); err != nil {
		return err
	}
	if err := MaximumReduce(s, signal, peak, paddedLength, nz.cfg.Geometry); err != nil {
		return err
	}
	return DivideNormalize(s, signal, peak, paddedLength, nz.cfg.Geometry)
}
