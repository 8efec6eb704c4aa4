// Package sysalloc adapts system memory sources to a single Allocator
// interface.
//
// Every implementation hands out []byte buffers whose identity is the
// address of their first byte. A buffer returned by Alloc or Resize must be
// passed back unchanged (same first byte) to Resize or Free.
//
// # Implementations
//
//   - Heap: Go heap buffers, 16-byte aligned. Free is a no-op; the garbage
//     collector reclaims memory once nothing references the buffer.
//   - OffHeap: malloc/realloc/free semantics backed by modernc.org/memory.
//     Memory is outside the Go heap and must be freed explicitly.
//   - Mmap: page-granular anonymous mappings, one mapping per buffer.
//   - Limited: wraps another Allocator with a hard byte budget and reports
//     ErrOutOfMemory once the budget is exhausted.
//
// Zero-size requests succeed and return a zero-length slice with a distinct
// address.
package sysalloc
