package normalize

import (
	"fmt"

	"github.com/cwbudde/algo-gpukern/device"
)

// ProductScale queues out[i] = raw[i]*impulse[i]/paddedLength for i in
// [0, paddedLength) as a single grid-stride launch.
func ProductScale(s *device.Stream, raw, impulse, out *device.Buffer[complex64], paddedLength int, g Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if paddedLength <= 0 {
		return nil
	}
	kernel := productScaleKernel(raw.Data(), impulse.Data(), out.Data(), paddedLength)
	if err := s.Launch(g.launch(0), kernel); err != nil {
		return fmt.Errorf("normalize: product-scale: %w", err)
	}
	return nil
}

// MaximumReduce queues the launches that merge max |real(signal[i])| into
// peak. peak must already hold a value no larger than the result.
func MaximumReduce(s *device.Stream, signal *device.Buffer[complex64], peak *device.AtomicFloat32, paddedLength int, g Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	cfg := g.launch(g.ThreadsPerBlock)
	window := 2 * g.Threads()
	data := signal.Data()

	for k := range ReduceLaunches(paddedLength, g) {
		if err := s.Launch(cfg, maximumKernel(data, peak, paddedLength, k*window)); err != nil {
			return fmt.Errorf("normalize: maximum window %d: %w", k, err)
		}
	}
	return nil
}

// DivideNormalize queues the launches that divide the real part of every
// sample by peak. The peak is read when each launch executes, so
// MaximumReduce may still be queued ahead of it on s.
func DivideNormalize(s *device.Stream, signal *device.Buffer[complex64], peak *device.AtomicFloat32, paddedLength int, g Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	cfg := g.launch(0)
	window := g.Threads()
	data := signal.Data()

	for k := range Launches(paddedLength, g) {
		if err := s.Launch(cfg, divideKernel(data, peak, paddedLength, k*window)); err != nil {
			return fmt.Errorf("normalize: divide window %d: %w", k, err)
		}
	}
	return nil
}
