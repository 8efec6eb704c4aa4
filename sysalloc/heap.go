package sysalloc

import (
	"fmt"

	"github.com/hupe1980/memdebug/internal/mem"
)

// Heap allocates from the Go heap.
type Heap struct{}

// NewHeap returns a Go heap allocator.
func NewHeap() *Heap { return &Heap{} }

// Alloc implements Allocator.
func (*Heap) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if size > mem.MaxAlloc {
		return nil, fmt.Errorf("%w: %d bytes exceeds the heap limit", ErrOutOfMemory, size)
	}
	return mem.AllocAligned(size, mem.MaxAlign), nil
}

// Resize implements Allocator. The buffer is reused in place when its
// capacity allows it.
func (h *Heap) Resize(b []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if b == nil {
		return h.Alloc(size)
	}
	if size <= cap(b) {
		return b[:size], nil
	}
	nb, err := h.Alloc(size)
	if err != nil {
		return nil, err
	}
	copy(nb, b)
	return nb, nil
}

// Free implements Allocator.
func (*Heap) Free([]byte) error { return nil }
