package memdebug

import (
	"io"
	"sync"
)

var (
	globalMu sync.RWMutex
	global   *Debugger
)

// Init creates the process-wide Debugger used by the package-level
// functions. It returns ErrAlreadyInitialized if called twice without an
// intervening Shutdown.
func Init(optFns ...Option) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return ErrAlreadyInitialized
	}
	global = New(optFns...)
	return nil
}

// Shutdown closes the process-wide Debugger and clears it.
func Shutdown() error {
	globalMu.Lock()
	d := global
	global = nil
	globalMu.Unlock()

	if d == nil {
		return ErrNotInitialized
	}
	return d.Close()
}

// Default returns the process-wide Debugger. It panics with
// ErrNotInitialized before Init.
func Default() *Debugger {
	globalMu.RLock()
	d := global
	globalMu.RUnlock()
	if d == nil {
		panic(ErrNotInitialized)
	}
	return d
}

// Malloc allocates from the process-wide Debugger.
func Malloc(size int) []byte {
	return Default().MallocAt(size, Caller(1))
}

// Realloc resizes through the process-wide Debugger.
func Realloc(b []byte, size int) []byte {
	return Default().ReallocAt(b, size, Caller(1))
}

// Free releases through the process-wide Debugger.
func Free(b []byte) {
	Default().FreeAt(b, Caller(1))
}

// NumAllocs returns the live allocation count of the process-wide Debugger.
func NumAllocs() int {
	return Default().NumAllocs()
}

// PrintHeap prints the sorted heap dump of the process-wide Debugger.
func PrintHeap() {
	Default().PrintHeap()
}

// WriteHeap writes the sorted heap dump of the process-wide Debugger to w.
func WriteHeap(w io.Writer) error {
	return Default().WriteHeap(w)
}
