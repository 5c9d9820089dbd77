package transpose

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned by ParseVariant.
var ErrUnknownVariant = errors.New("transpose: unknown variant")

// Variant selects a transpose kernel.
type Variant int

const (
	// Naive moves elements straight through global memory.
	Naive Variant = iota

	// SharedMemory stages tiles in padded shared memory.
	SharedMemory

	// Optimal is SharedMemory with the inner loops unrolled.
	Optimal
)

// Variants returns every known variant in order.
func Variants() []Variant {
	return []Variant{Naive, SharedMemory, Optimal}
}

func (v Variant) String() string {
	switch v {
	case Naive:
		return "naive"
	case SharedMemory:
		return "shmem"
	case Optimal:
		return "optimal"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant maps a name to a variant. "shared" is accepted as an alias
// for "shmem".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "naive":
		return Naive, nil
	case "shmem", "shared":
		return SharedMemory, nil
	case "optimal":
		return Optimal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

func (v Variant) valid() bool {
	return v >= Naive && v <= Optimal
}
