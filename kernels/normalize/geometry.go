package normalize

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-gpukern/device"
)

// ErrInvalidGeometry is returned for geometries that describe no launch.
var ErrInvalidGeometry = errors.New("normalize: invalid launch geometry")

// Geometry is a one-dimensional launch shape.
type Geometry struct {
	Blocks          int
	ThreadsPerBlock int
}

// Threads returns Blocks*ThreadsPerBlock.
func (g Geometry) Threads() int {
	return g.Blocks * g.ThreadsPerBlock
}

// Validate reports whether g can be launched.
func (g Geometry) Validate() error {
	if g.Blocks < 1 || g.ThreadsPerBlock < 1 {
		return fmt.Errorf("%w: %d blocks of %d threads", ErrInvalidGeometry, g.Blocks, g.ThreadsPerBlock)
	}
	if g.ThreadsPerBlock > device.MaxThreadsPerBlock {
		return fmt.Errorf("%w: %d threads per block exceeds %d",
			ErrInvalidGeometry, g.ThreadsPerBlock, device.MaxThreadsPerBlock)
	}
	return nil
}

func (g Geometry) launch(shared int) device.LaunchConfig {
	return device.LaunchConfig{
		Grid:   device.Dim1(g.Blocks),
		Block:  device.Dim1(g.ThreadsPerBlock),
		Shared: shared,
	}
}

// Launches returns the number of windowed launches DivideNormalize issues
// for paddedLength samples.
func Launches(paddedLength int, g Geometry) int {
	return ceilDiv(paddedLength, g.Threads())
}

// ReduceLaunches returns the number of windowed launches MaximumReduce
// issues. Each thread folds two samples per launch.
func ReduceLaunches(paddedLength int, g Geometry) int {
	return ceilDiv(paddedLength, 2*g.Threads())
}

func ceilDiv(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
