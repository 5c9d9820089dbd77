package normalize

import (
	"math"

	"github.com/cwbudde/algo-gpukern/device"
)

func productScaleKernel(raw, impulse, out []complex64, n int) device.Kernel {
	scale := float32(n)
	return func(b *device.Block) {
		stride := b.Dim.X * b.Grid.X
		b.Threads(func(t device.Thread) {
			for i := b.GlobalX(t); i < n; i += stride {
				a, c := raw[i], impulse[i]
				re := float32(real(a)*real(c)) - float32(imag(a)*imag(c))
				im := float32(real(a)*imag(c)) + float32(imag(a)*real(c))
				out[i] = complex(re/scale, im/scale)
			}
		})
	}
}

// maximumKernel reduces the window starting at offset. Block k of the
// window covers 2*blockDim samples from offset + 2*k*blockDim.
func maximumKernel(signal []complex64, peak *device.AtomicFloat32, n, offset int) device.Kernel {
	return func(b *device.Block) {
		partial := b.Shared()
		width := b.Dim.X
		base := offset + 2*b.Idx.X*width

		b.Threads(func(t device.Thread) {
			i := base + t.X
			partial[t.X] = max32(absReal(signal, i, n), absReal(signal, i+width, n))
		})

		// Ceiling fold: with live values left, thread t folds t+s into t
		// where s = ceil(live/2), so an odd tail is never dropped. No
		// thread writes a slot another thread reads in the same step.
		for live := width; live > 1; {
			s := (live + 1) / 2
			b.Threads(func(t device.Thread) {
				if t.X+s < live {
					partial[t.X] = max32(partial[t.X], partial[t.X+s])
				}
			})
			live = s
		}

		b.Threads(func(t device.Thread) {
			if t.X == 0 {
				peak.Max(partial[0])
			}
		})
	}
}

func divideKernel(signal []complex64, peak *device.AtomicFloat32, n, offset int) device.Kernel {
	return func(b *device.Block) {
		p := peak.Load()
		b.Threads(func(t device.Thread) {
			i := offset + b.GlobalX(t)
			if i < n {
				v := signal[i]
				signal[i] = complex(real(v)/p, imag(v))
			}
		})
	}
}

// absReal returns |real(x[i])|, or 0 when i is outside [0, n).
func absReal(x []complex64, i, n int) float32 {
	if i >= n {
		return 0
	}
	return float32(math.Abs(float64(real(x[i]))))
}

func max32(a, b float32) float32 {
	if b > a {
		return b
	}
	return a
}
