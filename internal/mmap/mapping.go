package mmap

import (
	"sync/atomic"
)

// Mapping represents an anonymous read-write memory mapping.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	data   []byte
	size   int
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// PageSize returns the system memory page size.
func PageSize() int {
	return osPageSize()
}

// RoundToPages rounds n up to a whole number of pages.
func RoundToPages(n int) int {
	ps := PageSize()
	return (n + ps - 1) / ps * ps
}

// MapAnon maps size bytes of zeroed anonymous memory, rounded up to whole
// pages.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	size = RoundToPages(size)

	data, unmapFunc, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		unmap: unmapFunc,
	}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
// Accessing the slice after Close() results in undefined behavior (likely a crash).
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Discard hands the whole pages at or after off back to the kernel. The
// mapping stays valid; discarded pages read as zero on their next use on
// unix. Bytes before off are preserved.
func (m *Mapping) Discard(off int) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if off < 0 || off > m.size {
		return ErrOutOfRange
	}
	start := RoundToPages(off)
	if start >= m.size {
		return nil
	}
	return osDiscard(m.data[start:])
}
