package testutil

import "math/rand"

// DeterministicMatrix returns an n×n row-major matrix of distinct values
// drawn from a fixed seed.
func DeterministicMatrix(seed int64, n int) []float32 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float32, n*n)
	for i := range out {
		out[i] = float32(i) + rng.Float32()
	}
	return out
}

// DeterministicNoise generates white noise in [-amplitude, amplitude) with
// a fixed seed.
func DeterministicNoise(seed int64, amplitude float32, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float32()*2 - 1) * amplitude
	}
	return out
}

// DeterministicComplex returns complex noise with independent parts.
func DeterministicComplex(seed int64, amplitude float32, length int) []complex64 {
	out := make([]complex64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		re := (rng.Float32()*2 - 1) * amplitude
		im := (rng.Float32()*2 - 1) * amplitude
		out[i] = complex(re, im)
	}
	return out
}

// RealParts returns a complex signal whose real parts are x and whose
// imaginary parts are zero.
func RealParts(x []float32) []complex64 {
	out := make([]complex64, len(x))
	for i, v := range x {
		out[i] = complex(v, 0)
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float32 {
	out := make([]float32, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}
