// Package mmap provides anonymous memory mappings outside the Go heap.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes()
//
//	// Release the pages past the first 4 KiB after shrinking a buffer
//	m.Discard(4096)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2); Discard uses madvise(MADV_DONTNEED)
//   - Windows: VirtualAlloc/VirtualFree; Discard uses MEM_RESET
//
// # Thread Safety
//
// The Close() method is idempotent and protected by atomic operations.
// However, callers must ensure no goroutines access Bytes() after Close()
// returns.
//
// Mappings are used by sysalloc.Mmap to obtain page-granular buffers the
// Go garbage collector never scans or moves.
package mmap
