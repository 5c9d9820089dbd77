package device

import "fmt"

// Hardware limits mirrored by the execution model.
const (
	// WarpSize is the number of threads scheduled together.
	WarpSize = 32

	// MaxThreadsPerBlock bounds Dim.X*Dim.Y of a block.
	MaxThreadsPerBlock = 1024

	// MaxSharedFloats bounds the per-block scratchpad (48 KiB of float32).
	MaxSharedFloats = 48 * 1024 / 4
)

// Dim is a two-dimensional extent or index.
type Dim struct {
	X, Y int
}

// Dim1 returns a one-dimensional extent.
func Dim1(x int) Dim {
	return Dim{X: x, Y: 1}
}

// Count returns X*Y.
func (d Dim) Count() int {
	return d.X * d.Y
}

func (d Dim) String() string {
	return fmt.Sprintf("(%d,%d)", d.X, d.Y)
}

// LaunchConfig describes one kernel launch.
type LaunchConfig struct {
	// Grid is the number of blocks in each dimension.
	Grid Dim

	// Block is the number of threads per block in each dimension.
	Block Dim

	// Shared is the number of float32 words of block-local scratch.
	Shared int
}

// Threads returns the total number of threads the launch covers.
func (c LaunchConfig) Threads() int {
	return c.Grid.Count() * c.Block.Count()
}

// Validate reports whether c describes a launch the device can run.
func (c LaunchConfig) Validate() error {
	if c.Grid.X < 1 || c.Grid.Y < 1 {
		return fmt.Errorf("%w: grid %v", ErrInvalidGeometry, c.Grid)
	}
	if c.Block.X < 1 || c.Block.Y < 1 {
		return fmt.Errorf("%w: block %v", ErrInvalidGeometry, c.Block)
	}
	if c.Block.Count() > MaxThreadsPerBlock {
		return fmt.Errorf("%w: %d threads per block exceeds %d",
			ErrInvalidGeometry, c.Block.Count(), MaxThreadsPerBlock)
	}
	if c.Shared < 0 || c.Shared > MaxSharedFloats {
		return fmt.Errorf("%w: shared size %d", ErrInvalidGeometry, c.Shared)
	}
	return nil
}
