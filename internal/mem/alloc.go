package mem

import (
	"math"
	"unsafe"
)

// MaxAlign is the strictest alignment any allocation is rounded to. It
// matches max_align_t on common 64-bit platforms.
const MaxAlign = 16

// MaxAlloc is the largest size AllocAligned serves. Larger requests are
// refused instead of reaching the runtime, which fails them fatally.
const MaxAlloc = min(1<<40, math.MaxInt-MaxAlign)

// AlignUp rounds n up to a multiple of align, which must be a power of two.
// The result overflows for n within align of math.MaxInt; use TryAlignUp
// for untrusted sizes.
func AlignUp(n, align int) int {
	mask := align - 1
	return (n + mask) &^ mask
}

// TryAlignUp is AlignUp that reports false instead of overflowing.
func TryAlignUp(n, align int) (int, bool) {
	if n > math.MaxInt-(align-1) {
		return 0, false
	}
	return AlignUp(n, align), true
}

// IsAligned reports whether the first byte of b sits on an align boundary.
func IsAligned(b []byte, align int) bool {
	if cap(b) == 0 {
		return true
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b))) //nolint:gosec // alignment check only
	return addr&uintptr(align-1) == 0
}

// AllocAligned allocates a byte slice of the given size whose first byte is
// aligned to align (a power of two).
//
// The returned slice always has a non-zero capacity, so even a zero-size
// request yields a distinct address.
//
// It returns nil for a negative size or a size above MaxAlloc.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size, align int) []byte {
	if size < 0 || size > MaxAlloc {
		return nil
	}
	if align < 1 {
		align = 1
	}

	// Allocate size + alignment to ensure we can find an aligned offset
	// We need enough space to shift the start pointer up to align-1 bytes
	backing := size
	if backing == 0 {
		backing = 1
	}
	buf := make([]byte, backing+align)

	// Calculate the offset to the first aligned byte
	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	mask := uintptr(align - 1)
	offset := (uintptr(align) - (addr & mask)) & mask

	// Return the slice starting at the aligned offset, capacity capped at the
	// usable size.
	return buf[offset : offset+uintptr(size) : offset+uintptr(backing)]
}
