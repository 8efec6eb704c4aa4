package sysalloc

import (
	"fmt"
	"sync"

	"modernc.org/memory"
)

// OffHeap allocates outside the Go heap using modernc.org/memory.
// Buffers must be freed explicitly; Close releases everything at once.
type OffHeap struct {
	mu sync.Mutex
	a  memory.Allocator
}

// NewOffHeap returns an off-heap allocator.
func NewOffHeap() *OffHeap { return &OffHeap{} }

// Alloc implements Allocator.
func (o *OffHeap) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	// memory.Allocator returns nil for zero-size requests.
	b, err := o.a.Malloc(max(size, 1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	return b[:size], nil
}

// Resize implements Allocator.
func (o *OffHeap) Resize(b []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if b == nil {
		return o.Alloc(size)
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	nb, err := o.a.Realloc(b, max(size, 1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	return nb[:size], nil
}

// Free implements Allocator.
func (o *OffHeap) Free(b []byte) error {
	if b == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.a.Free(b)
}

// Close releases all memory obtained through o.
func (o *OffHeap) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.a.Close()
}
