package device

import "errors"

// Errors returned by the device package.
var (
	ErrInvalidGeometry = errors.New("device: invalid launch geometry")
	ErrInvalidLength   = errors.New("device: invalid buffer length")
	ErrLengthMismatch  = errors.New("device: buffer length mismatch")
	ErrStreamClosed    = errors.New("device: stream closed")
	ErrContextClosed   = errors.New("device: context closed")
	ErrStreamsOpen     = errors.New("device: context has open streams")
)
