// Package cpu reports the host capabilities the emulated device runs on.
//
// Detection is performed lazily on the first call to DetectFeatures and the
// result is cached. Tests may pin a feature set with SetForcedFeatures.
package cpu

import (
	"runtime"
	"sync"
)

// SIMDLevel is the widest vector extension the host exposes.
type SIMDLevel int

const (
	// SIMDNone indicates scalar execution only.
	SIMDNone SIMDLevel = iota
	SIMDSSE2
	SIMDAVX2
	SIMDAVX512
	SIMDNEON
)

// String returns a human-readable name for the SIMD level.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX2:
		return "AVX2"
	case SIMDAVX512:
		return "AVX-512"
	case SIMDNEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// Features describes the host processor backing a device context.
type Features struct {
	HasSSE2   bool
	HasAVX2   bool
	HasAVX512 bool
	HasNEON   bool

	// Cores is the number of logical CPUs usable by the process.
	Cores int

	// Architecture is runtime.GOARCH.
	Architecture string
}

// Level returns the widest SIMD level present in f.
func (f Features) Level() SIMDLevel {
	switch {
	case f.HasAVX512:
		return SIMDAVX512
	case f.HasAVX2:
		return SIMDAVX2
	case f.HasSSE2:
		return SIMDSSE2
	case f.HasNEON:
		return SIMDNEON
	default:
		return SIMDNone
	}
}

var (
	detected   Features
	detectOnce sync.Once

	forcedMu sync.RWMutex
	forced   *Features
)

// DetectFeatures returns the capabilities of the current host.
// It is safe for concurrent use.
func DetectFeatures() Features {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()
	if f != nil {
		return *f
	}

	detectOnce.Do(func() {
		detected = detectFeaturesImpl()
		detected.Cores = runtime.NumCPU()
	})
	return detected
}

// SetForcedFeatures overrides detection. Intended for tests.
func SetForcedFeatures(f Features) {
	forcedMu.Lock()
	forced = &f
	forcedMu.Unlock()
}

// ResetDetection clears any forced features.
func ResetDetection() {
	forcedMu.Lock()
	forced = nil
	forcedMu.Unlock()
}
