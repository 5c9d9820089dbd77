// Package reference holds straightforward host implementations of the
// device kernels. They are slow and allocate freely; tests and the
// kernbench -verify mode compare device results against them.
package reference

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Transpose returns the transpose of the n×n row-major matrix src.
// float32 values round-trip through float64 exactly.
func Transpose(src []float32, n int) []float32 {
	if n == 0 {
		return nil
	}
	a := mat.NewDense(n, n, widen(src[:n*n]))
	t := mat.DenseCopyOf(a.T())

	raw := t.RawMatrix()
	out := make([]float32, n*n)
	for r := 0; r < n; r++ {
		row := raw.Data[r*raw.Stride : r*raw.Stride+n]
		for c, v := range row {
			out[r*n+c] = float32(v)
		}
	}
	return out
}

// ProductScale returns raw[i]*impulse[i]/n for every i, computed on split
// real and imaginary planes in float64.
func ProductScale(raw, impulse []complex64, n int) []complex64 {
	m := min(len(raw), len(impulse))
	ar, ai := split(raw[:m])
	br, bi := split(impulse[:m])

	ac := make([]float64, m)
	bd := make([]float64, m)
	ad := make([]float64, m)
	bc := make([]float64, m)
	vecmath.MulBlock(ac, ar, br)
	vecmath.MulBlock(bd, ai, bi)
	vecmath.MulBlock(ad, ar, bi)
	vecmath.MulBlock(bc, ai, br)

	re := floats.SubTo(make([]float64, m), ac, bd)
	im := floats.AddTo(make([]float64, m), ad, bc)
	scale := 1 / float64(n)
	floats.Scale(scale, re)
	floats.Scale(scale, im)

	out := make([]complex64, m)
	for i := range out {
		out[i] = complex(float32(re[i]), float32(im[i]))
	}
	return out
}

// MaxAbsReal returns max |real(x[i])|, or 0 for an empty slice.
func MaxAbsReal(x []complex64) float32 {
	if len(x) == 0 {
		return 0
	}
	abs := make([]float64, len(x))
	for i, v := range x {
		abs[i] = math.Abs(float64(real(v)))
	}
	return float32(floats.Max(abs))
}

// Normalize divides the real part of every sample by MaxAbsReal(x),
// leaving imaginary parts untouched.
func Normalize(x []complex64) []complex64 {
	peak := MaxAbsReal(x)
	out := make([]complex64, len(x))
	for i, v := range x {
		out[i] = complex(real(v)/peak, imag(v))
	}
	return out
}

// Magnitudes returns |x[i]| for every sample.
func Magnitudes(x []complex64) []float64 {
	re, im := split(x)
	out := make([]float64, len(x))
	vecmath.Magnitude(out, re, im)
	return out
}

// Convolve returns the full linear convolution of a and b.
func Convolve(a, b []float32) []float32 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		for j, h := range b {
			out[i+j] += float64(x) * float64(h)
		}
	}
	return narrow(out)
}

func widen(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

func narrow(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

func split(x []complex64) (re, im []float64) {
	re = make([]float64, len(x))
	im = make([]float64, len(x))
	for i, v := range x {
		re[i] = float64(real(v))
		im[i] = float64(imag(v))
	}
	return re, im
}
