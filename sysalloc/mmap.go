package sysalloc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/memdebug/internal/mmap"
	"github.com/hupe1980/memdebug/internal/record"
)

// Mmap backs every buffer with its own anonymous mapping. Sizes are rounded
// up to whole pages; the returned slice has the requested length.
type Mmap struct {
	mu       sync.Mutex
	mappings map[uintptr]*mmap.Mapping
}

// NewMmap returns an mmap-backed allocator.
func NewMmap() *Mmap {
	return &Mmap{mappings: make(map[uintptr]*mmap.Mapping)}
}

// Alloc implements Allocator.
func (m *Mmap) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	mp, err := mmap.MapAnon(max(size, 1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	b := mp.Bytes()[:size]

	m.mu.Lock()
	m.mappings[record.AddrOf(b)] = mp
	m.mu.Unlock()
	return b, nil
}

// Resize implements Allocator. The mapping is reused while the new size
// fits its pages; shrinking releases the pages past the new size.
func (m *Mmap) Resize(b []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if b == nil {
		return m.Alloc(size)
	}

	m.mu.Lock()
	mp, ok := m.mappings[record.AddrOf(b)]
	m.mu.Unlock()
	if !ok {
		return nil, ErrUnknownBuffer
	}
	if size <= mp.Size() {
		if size < len(b) {
			if err := mp.Discard(size); err != nil {
				return nil, err
			}
		}
		return mp.Bytes()[:size], nil
	}

	nb, err := m.Alloc(size)
	if err != nil {
		return nil, err
	}
	copy(nb, b)
	if err := m.Free(b); err != nil {
		return nil, err
	}
	return nb, nil
}

// Free implements Allocator.
func (m *Mmap) Free(b []byte) error {
	if b == nil {
		return nil
	}
	addr := record.AddrOf(b)

	m.mu.Lock()
	mp, ok := m.mappings[addr]
	delete(m.mappings, addr)
	m.mu.Unlock()

	if !ok {
		return ErrUnknownBuffer
	}
	return mp.Close()
}

// Close unmaps every mapping still held.
func (m *Mmap) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for addr, mp := range m.mappings {
		errs = append(errs, mp.Close())
		delete(m.mappings, addr)
	}
	return errors.Join(errs...)
}
