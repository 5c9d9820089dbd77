// Package convolve runs a normalized linear convolution with the FFTs on
// the host and the spectral product, peak search and normalization on the
// device.
//
// The sequence is: zero-pad signal and impulse to a power-of-two padded
// length, forward FFT both, normalize.ProductScale on the device, inverse
// FFT, then normalize.Normalizer.Normalize on the time-domain result. The
// returned samples therefore peak at exactly 1 in magnitude, whatever
// scaling convention the FFT uses.
package convolve

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-gpukern/device"
	"github.com/cwbudde/algo-gpukern/kernels/normalize"
)

// Errors returned by Convolve.
var (
	ErrEmptyInput   = errors.New("convolve: empty input")
	ErrEmptyImpulse = errors.New("convolve: empty impulse response")
)

// Transform is a complex FFT of fixed length. Forward and Inverse must
// accept dst == src.
type Transform interface {
	Forward(dst, src []complex128) error
	Inverse(dst, src []complex128) error
}

// TransformFactory builds a Transform for length n.
type TransformFactory func(n int) (Transform, error)

// NewFFT returns an algo-fft plan of length n.
func NewFFT(n int) (Transform, error) {
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Config controls a Convolver.
type Config struct {
	Geometry  normalize.Geometry
	Context   *device.Context
	Transform TransformFactory
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig uses the normalize default geometry, a private device
// context and algo-fft transforms.
func DefaultConfig() Config {
	return Config{
		Geometry:  normalize.DefaultConfig().Geometry,
		Transform: NewFFT,
	}
}

// WithGeometry sets the device launch geometry.
func WithGeometry(g normalize.Geometry) Option {
	return func(cfg *Config) {
		cfg.Geometry = g
	}
}

// WithContext runs the device stages on ctx. The Convolver does not close
// a context it did not create.
func WithContext(ctx *device.Context) Option {
	return func(cfg *Config) {
		cfg.Context = ctx
	}
}

// WithTransform replaces the FFT implementation.
func WithTransform(f TransformFactory) Option {
	return func(cfg *Config) {
		if f != nil {
			cfg.Transform = f
		}
	}
}

// Convolver performs normalized convolutions. It caches one transform per
// padded length and is not safe for concurrent use.
type Convolver struct {
	cfg     Config
	ctx     *device.Context
	ownsCtx bool
	nz      *normalize.Normalizer
	plans   map[int]Transform
	peak    device.AtomicFloat32
}

// New creates a Convolver.
func New(opts ...Option) (*Convolver, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	nz, err := normalize.New(normalize.WithGeometry(cfg.Geometry))
	if err != nil {
		return nil, fmt.Errorf("convolve: %w", err)
	}

	c := &Convolver{
		cfg:   cfg,
		ctx:   cfg.Context,
		nz:    nz,
		plans: make(map[int]Transform),
	}
	if c.ctx == nil {
		c.ctx = device.NewContext()
		c.ownsCtx = true
	}
	return c, nil
}

// PaddedLength returns the transform length used for a signal of
// signalLen samples and an impulse response of impulseLen samples: the
// next power of two that holds the full linear convolution.
func PaddedLength(signalLen, impulseLen int) int {
	return nextPowerOf2(signalLen + impulseLen - 1)
}

// Peak returns the peak found by the last Convolve call, in the units of
// the inverse transform output before the divide.
func (c *Convolver) Peak() float32 {
	return c.peak.Load()
}

// Convolve returns the full linear convolution of signal and impulse,
// len(signal)+len(impulse)-1 samples, scaled so that its largest magnitude
// is 1. An all-zero result is not detected and yields non-finite samples.
func (c *Convolver) Convolve(signal, impulse []float32) ([]float32, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}
	if len(impulse) == 0 {
		return nil, ErrEmptyImpulse
	}

	outLen := len(signal) + len(impulse) - 1
	n := PaddedLength(len(signal), len(impulse))

	plan, err := c.plan(n)
	if err != nil {
		return nil, err
	}

	rawSpec, err := spectrum(plan, signal, n)
	if err != nil {
		return nil, err
	}
	impSpec, err := spectrum(plan, impulse, n)
	if err != nil {
		return nil, err
	}

	raw, err := upload(rawSpec)
	if err != nil {
		return nil, err
	}
	imp, err := upload(impSpec)
	if err != nil {
		return nil, err
	}
	out, err := device.NewBuffer[complex64](n)
	if err != nil {
		return nil, err
	}

	s, err := c.ctx.NewStream()
	if err != nil {
		return nil, fmt.Errorf("convolve: %w", err)
	}
	defer s.Close()

	if err := normalize.ProductScale(s, raw, imp, out, n, c.cfg.Geometry); err != nil {
		return nil, err
	}
	if err := s.Synchronize(); err != nil {
		return nil, err
	}

	product := make([]complex64, n)
	if err := out.Download(product); err != nil {
		return nil, err
	}
	work := widen(product)
	if err := plan.Inverse(work, work); err != nil {
		return nil, fmt.Errorf("convolve: inverse FFT: %w", err)
	}
	if err := out.Upload(narrow(work)); err != nil {
		return nil, err
	}

	if err := c.nz.Normalize(s, out, &c.peak, n); err != nil {
		return nil, err
	}
	if err := s.Synchronize(); err != nil {
		return nil, err
	}

	if err := out.Download(product); err != nil {
		return nil, err
	}
	result := make([]float32, outLen)
	for i := range result {
		result[i] = real(product[i])
	}
	return result, nil
}

// Close releases the device context if the Convolver created it.
func (c *Convolver) Close() error {
	c.plans = nil
	if c.ownsCtx {
		return c.ctx.Close()
	}
	return nil
}

func (c *Convolver) plan(n int) (Transform, error) {
	if p, ok := c.plans[n]; ok {
		return p, nil
	}
	p, err := c.cfg.Transform(n)
	if err != nil {
		return nil, fmt.Errorf("convolve: failed to create FFT plan: %w", err)
	}
	c.plans[n] = p
	return p, nil
}

func spectrum(plan Transform, x []float32, n int) ([]complex64, error) {
	buf := make([]complex128, n)
	for i, v := range x {
		buf[i] = complex(float64(v), 0)
	}
	if err := plan.Forward(buf, buf); err != nil {
		return nil, fmt.Errorf("convolve: forward FFT: %w", err)
	}
	return narrow(buf), nil
}

func upload(x []complex64) (*device.Buffer[complex64], error) {
	b, err := device.NewBuffer[complex64](len(x))
	if err != nil {
		return nil, err
	}
	return b, b.Upload(x)
}

func widen(x []complex64) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = complex128(v)
	}
	return out
}

func narrow(x []complex128) []complex64 {
	out := make([]complex64, len(x))
	for i, v := range x {
		out[i] = complex64(v)
	}
	return out
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
