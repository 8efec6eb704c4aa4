package arena

import (
	"math"
	"unsafe"

	"github.com/hupe1980/memdebug"
)

// New returns a pointer to a zeroed T stored inside the arena.
// The pointer is valid until the arena is destroyed.
//
// T must not contain Go pointers (pointers, slices, strings, maps,
// interfaces, channels or funcs). Region memory may live off the Go heap,
// and the garbage collector never scans it.
func New[T any](a *Arena) *T {
	var zero T
	b := a.AllocAt(int(unsafe.Sizeof(zero)), memdebug.Caller(1))
	if len(b) == 0 {
		return new(T)
	}
	clear(b)
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}

// NewSlice returns a zeroed slice of n T stored inside the arena.
// Returns nil if n <= 0. T must be pointer-free, as for New.
func NewSlice[T any](a *Arena, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	size := math.MaxInt // overflows every region
	if elem == 0 || n <= math.MaxInt/elem {
		size = elem * n
	}
	b := a.AllocAt(size, memdebug.Caller(1))
	if len(b) == 0 {
		return make([]T, n)
	}
	clear(b)
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// PopOf gives back the space of one T from the top of the newest region.
func PopOf[T any](a *Arena) {
	var zero T
	a.Pop(int(unsafe.Sizeof(zero)))
}
