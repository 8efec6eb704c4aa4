package memdebug

import (
	"errors"
	"fmt"
)

// Process exit codes used by the fatal paths.
const (
	ExitCodeArenaOverflow = 1
	ExitCodeMemPanic      = 10
	ExitCodeOutOfMemory   = 11
)

var (
	// ErrOutOfMemory matches every *OutOfMemoryError.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrInvalidRelease matches every *InvalidReleaseError.
	ErrInvalidRelease = errors.New("invalid release")
	// ErrArenaOverflow matches every *ArenaOverflowError.
	ErrArenaOverflow = errors.New("arena overflow")

	// ErrNotInitialized is the panic value of package-level calls made
	// before Init.
	ErrNotInitialized = errors.New("memdebug: not initialized")
	// ErrAlreadyInitialized is returned by a second Init.
	ErrAlreadyInitialized = errors.New("memdebug: already initialized")
)

// OutOfMemoryError indicates that the system allocator could not serve a
// request.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type OutOfMemoryError struct {
	Size  int
	Site  CallSite
	cause error
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("out of memory: could not allocate %d bytes at %s", e.Size, e.Site)
}

func (e *OutOfMemoryError) Is(target error) bool { return target == ErrOutOfMemory }

func (e *OutOfMemoryError) Unwrap() error { return e.cause }

// InvalidReleaseError indicates a free or realloc of an address that is not
// tracked.
type InvalidReleaseError struct {
	Addr uintptr
	Op   string // "free" or "realloc"
	Site CallSite
}

func (e *InvalidReleaseError) Error() string {
	return fmt.Sprintf("tried to %s() an invalid pointer %#x at %s", e.Op, e.Addr, e.Site)
}

func (e *InvalidReleaseError) Is(target error) bool { return target == ErrInvalidRelease }

// ArenaOverflowError indicates a request larger than one arena region.
type ArenaOverflowError struct {
	Arena    string
	Size     int
	Capacity int
	Site     CallSite
}

func (e *ArenaOverflowError) Error() string {
	return fmt.Sprintf("arena %q: cannot allocate %d bytes in regions of %d bytes at %s",
		e.Arena, e.Size, e.Capacity, e.Site)
}

func (e *ArenaOverflowError) Is(target error) bool { return target == ErrArenaOverflow }

// ExitCode returns the process exit code for a fatal error.
func ExitCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRelease):
		return ExitCodeMemPanic
	case errors.Is(err, ErrOutOfMemory):
		return ExitCodeOutOfMemory
	default:
		return ExitCodeArenaOverflow
	}
}
