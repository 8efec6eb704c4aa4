// Package memdebug provides a debug-instrumented memory subsystem for Go.
//
// A Debugger hands out []byte buffers from a system allocator and records
// every live one with the call site that requested it. At any point the live
// set can be dumped grouped by call site, which makes leaks visible. Releasing
// an address that is not live (double free, foreign buffer) and allocation
// failure are fatal: a diagnostic is printed and the process exits.
//
// # Quick Start
//
//	d := memdebug.New()
//	buf := d.Malloc(64)
//	buf = d.Realloc(buf, 128)
//	d.Free(buf)
//	d.PrintHeap() // prints an empty dump
//
// Process-wide use:
//
//	if err := memdebug.Init(memdebug.WithLogLevel(slog.LevelDebug)); err != nil {
//	    log.Fatal(err)
//	}
//	defer memdebug.Shutdown()
//	p := memdebug.Malloc(32)
//	defer memdebug.Free(p)
//
// Package-level functions panic with ErrNotInitialized before Init.
//
// # Heap Dumps
//
// PrintHeap writes one line per call site:
//
//	*************
//	* HEAP DUMP *
//	*************
//	2 pointers have been allocated totalling 96 bytes in file: app/main.go in function: main() on line: 12.
//
//	Total size in bytes: 96
//	Total number of allocations: 2
//
// # Fatal Faults
//
//	Fault            Exit code
//	invalid release  ExitCodeMemPanic (10)
//	out of memory    ExitCodeOutOfMemory (11), followed by an unsorted heap dump
//	arena overflow   ExitCodeArenaOverflow (1)
//
// WithExitFunc replaces os.Exit, which is how tests observe faults.
//
// # System Allocators
//
// Raw memory comes from a sysalloc.Allocator: the Go heap (default),
// off-heap malloc or anonymous mappings. WithMemoryLimit puts a byte budget
// in front of any of them.
//
// # Arenas
//
// Package arena builds region allocators on top of a Debugger; see
// arena.Create.
//
// # Disabling
//
// Building with -tags nomemdebug compiles tracking out. Every operation then
// forwards straight to the system allocator and dumps print nothing.
package memdebug
