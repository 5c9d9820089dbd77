package transpose

import (
	"fmt"

	"github.com/cwbudde/algo-gpukern/device"
)

const (
	// TileSize is the edge length of the square tile one block owns.
	TileSize = 64

	// blockRows is the number of thread rows per block; each thread row
	// covers stripLen rows of the tile.
	blockRows = 16
	stripLen  = TileSize / blockRows

	// tilePitch is the padded row length of the shared tile.
	tilePitch = TileSize + 2
)

// LaunchConfig returns the launch geometry used for an n×n matrix.
func LaunchConfig(n int, v Variant) device.LaunchConfig {
	cfg := device.LaunchConfig{
		Grid:  device.Dim{X: n / TileSize, Y: n / TileSize},
		Block: device.Dim{X: TileSize, Y: blockRows},
	}
	if v != Naive {
		cfg.Shared = TileSize * tilePitch
	}
	return cfg
}

// Transpose queues output = transpose(input) for an n×n matrix on s and
// returns once the launch is queued. input and output must be distinct
// buffers of at least n*n elements and n a positive multiple of 64.
//
// An unknown variant is a programming error and panics before anything is
// queued.
func Transpose(s *device.Stream, input, output *device.Buffer[float32], n int, v Variant) error {
	var kernel device.Kernel
	switch v {
	case Naive:
		kernel = naiveKernel(input.Data(), output.Data(), n)
	case SharedMemory:
		kernel = sharedKernel(input.Data(), output.Data(), n)
	case Optimal:
		kernel = optimalKernel(input.Data(), output.Data(), n)
	default:
		panic(fmt.Sprintf("transpose: unknown variant %d", int(v)))
	}
	return s.Launch(LaunchConfig(n, v), kernel)
}

// Host transposes src into dst on a fresh stream of ctx and waits for the
// result. It is a convenience for callers that hold host slices.
func Host(ctx *device.Context, dst, src []float32, n int, v Variant) error {
	if !v.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	if len(src) < n*n || len(dst) < n*n {
		return fmt.Errorf("transpose: need %d elements, have src=%d dst=%d", n*n, len(src), len(dst))
	}

	in, err := device.NewBuffer[float32](n * n)
	if err != nil {
		return err
	}
	out, err := device.NewBuffer[float32](n * n)
	if err != nil {
		return err
	}
	if err := in.Upload(src[:n*n]); err != nil {
		return err
	}

	s, err := ctx.NewStream()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := Transpose(s, in, out, n, v); err != nil {
		return err
	}
	if err := s.Synchronize(); err != nil {
		return err
	}
	return out.Download(dst[:n*n])
}
