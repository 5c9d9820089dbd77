package device

import (
	"math"
	"sync/atomic"
)

// AtomicFloat32 is a single float32 cell in global memory that many blocks
// may update concurrently. The zero value holds 0.
type AtomicFloat32 struct {
	bits atomic.Uint32
}

// Load returns the current value.
func (a *AtomicFloat32) Load() float32 {
	return math.Float32frombits(a.bits.Load())
}

// Store sets the value. It must not race with Max calls whose result the
// caller depends on.
func (a *AtomicFloat32) Store(v float32) {
	a.bits.Store(math.Float32bits(v))
}

// Max merges v into the cell so that it holds the larger of the two values
// and returns the value observed before the merge.
//
// There is no native float max, so the merge runs a compare-and-swap loop
// over the integer view of the bits: load, compute, swap, and retry when
// another writer changed the cell in between.
func (a *AtomicFloat32) Max(v float32) float32 {
	for {
		oldBits := a.bits.Load()
		old := math.Float32frombits(oldBits)
		if !(v > old) {
			return old
		}
		if a.bits.CompareAndSwap(oldBits, math.Float32bits(v)) {
			return old
		}
	}
}
