package sysalloc

import (
	"errors"
	"io"
)

var (
	// ErrOutOfMemory is returned when the underlying memory source cannot
	// satisfy a request.
	ErrOutOfMemory = errors.New("sysalloc: out of memory")
	// ErrUnknownBuffer is returned when a buffer was not produced by the
	// allocator it is returned to.
	ErrUnknownBuffer = errors.New("sysalloc: unknown buffer")
	// ErrInvalidSize is returned for negative sizes.
	ErrInvalidSize = errors.New("sysalloc: invalid size")
)

// Allocator is a source of raw memory.
// Implementations must be safe for concurrent use.
type Allocator interface {
	// Alloc returns a buffer of len size.
	Alloc(size int) ([]byte, error)
	// Resize returns a buffer of len size holding the first
	// min(len(b), size) bytes of b. The returned buffer may or may not share
	// b's address; b must not be used afterwards. Resize(nil, n) is Alloc(n).
	Resize(b []byte, size int) ([]byte, error)
	// Free releases b. Free(nil) is a no-op.
	Free(b []byte) error
}

// Close releases a if it holds resources beyond its buffers.
func Close(a Allocator) error {
	if c, ok := a.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
