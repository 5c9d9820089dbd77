// Package normalize implements the device side of a normalized
// frequency-domain convolution: a complex product-and-scale, a global
// maximum reduction and a max-normalizing divide.
//
// The three stages are launched independently over complex64 buffers of
// paddedLength samples:
//
//	ProductScale     out[i] = raw[i] * impulse[i] / paddedLength
//	MaximumReduce    peak = max(peak, max_i |real(signal[i])|)
//	DivideNormalize  real(signal[i]) /= peak
//
// Launch geometry is supplied by the caller and does not have to divide
// paddedLength. ProductScale covers the array with a grid-stride loop;
// MaximumReduce and DivideNormalize issue one launch per offset window.
// All launches go to the caller's stream, which retires them in order, so
// submitting the stages to one stream is enough to sequence them.
//
// The peak is a device.AtomicFloat32 passed explicitly. It must hold a
// value no larger than the true peak (conventionally 0) before
// MaximumReduce runs; Normalizer.Run and Normalizer.Normalize reset it on
// the stream. An all-zero signal leaves the peak at 0 and the divide
// produces non-finite values.
package normalize
