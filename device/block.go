package device

import "github.com/ajroetker/go-highway/hwy/contrib/workerpool"

// Kernel is the body of a launch, invoked once per block.
type Kernel func(b *Block)

// Thread identifies one thread inside its block.
type Thread struct {
	// X and Y are the thread indices within the block.
	X, Y int

	// ID is the linear index X + Y*Block.X. Threads with the same ID/WarpSize
	// form a warp.
	ID int
}

// Block is the execution state of one thread block.
type Block struct {
	// Idx is the index of this block in the grid.
	Idx Dim

	// Dim is the number of threads in the block.
	Dim Dim

	// Grid is the number of blocks in the launch.
	Grid Dim

	shared []float32
}

// Shared returns the block-local scratchpad. Its contents are undefined
// when the block starts.
func (b *Block) Shared() []float32 {
	return b.shared
}

// Threads runs fn for every thread of the block, warp by warp, and returns
// after the last thread finished. The return is a barrier: writes made to
// shared memory inside fn are visible to every thread in the next call.
func (b *Block) Threads(fn func(t Thread)) {
	id := 0
	for y := 0; y < b.Dim.Y; y++ {
		for x := 0; x < b.Dim.X; x++ {
			fn(Thread{X: x, Y: y, ID: id})
			id++
		}
	}
}

// GlobalX returns the flattened global x index of thread t.
func (b *Block) GlobalX(t Thread) int {
	return b.Idx.X*b.Dim.X + t.X
}

// run executes kernel over every block of cfg. Each pool chunk reuses one
// Block, so its scratchpad lives for one block at a time.
func run(p *workerpool.Pool, cfg LaunchConfig, kernel Kernel) {
	p.ParallelFor(cfg.Grid.Count(), func(start, end int) {
		b := &Block{
			Dim:    cfg.Block,
			Grid:   cfg.Grid,
			shared: make([]float32, cfg.Shared),
		}
		for i := start; i < end; i++ {
			b.Idx = Dim{X: i % cfg.Grid.X, Y: i / cfg.Grid.X}
			kernel(b)
		}
	})
}
