package device

import "fmt"

// Elem is the set of element types a global buffer may hold.
type Elem interface {
	~float32 | ~complex64
}

// Buffer is a region of global memory. Kernels address it through Data;
// the host moves data in and out with Upload and Download, which are not
// ordered with respect to any stream.
type Buffer[T Elem] struct {
	data []T
}

// NewBuffer allocates a zeroed buffer of n elements.
func NewBuffer[T Elem](n int) (*Buffer[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	return &Buffer[T]{data: make([]T, n)}, nil
}

// Len returns the number of elements.
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Data returns the device view of the buffer. Only kernels should write
// through it.
func (b *Buffer[T]) Data() []T {
	return b.data
}

// Upload copies src to the start of the buffer.
func (b *Buffer[T]) Upload(src []T) error {
	if len(src) > len(b.data) {
		return fmt.Errorf("%w: upload of %d into %d", ErrLengthMismatch, len(src), len(b.data))
	}
	copy(b.data, src)
	return nil
}

// Download copies the first len(dst) elements of the buffer into dst.
func (b *Buffer[T]) Download(dst []T) error {
	if len(dst) > len(b.data) {
		return fmt.Errorf("%w: download of %d from %d", ErrLengthMismatch, len(dst), len(b.data))
	}
	copy(dst, b.data)
	return nil
}

// Close releases the buffer memory.
func (b *Buffer[T]) Close() error {
	b.data = nil
	return nil
}
