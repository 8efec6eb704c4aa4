//go:build !nomemdebug

package memdebug

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdebug/internal/record"
	"github.com/hupe1980/memdebug/testutil"
)

func TestDebugger_DoubleFreeAborts(t *testing.T) {
	m := &BasicMetricsCollector{}
	d, out, exit := newTestDebugger(t, WithMetricsCollector(m))

	b := d.MallocAt(16, site("app/main.go", "main", 3))
	d.Free(b)
	addr := record.AddrOf(b)

	v := testutil.Recover(func() {
		d.FreeAt(b, site("app/main.go", "cleanup", 30))
	})

	err, ok := v.(error)
	require.True(t, ok, "expected error panic, got %v", v)
	assert.ErrorIs(t, err, ErrInvalidRelease)

	code, ok := exit.Last()
	require.True(t, ok)
	assert.Equal(t, ExitCodeMemPanic, code)

	want := "\nMEMORY PANIC: Tried to free() an invalid pointer.\n" +
		fmt.Sprintf("Pointer: %#x\n", addr) +
		"On line: 30\nIn function: cleanup()\nIn file: app/main.go\nAborted.\n"
	assert.Equal(t, want, out.String())
	assert.Equal(t, int64(1), m.GetStats().InvalidFreeFaults)
	assert.Equal(t, 0, d.NumAllocs())
}

func TestDebugger_FreeForeignBufferAborts(t *testing.T) {
	d, out, exit := newTestDebugger(t)
	d.Malloc(8)

	foreign := make([]byte, 8)
	v := testutil.Recover(func() { d.Free(foreign) })

	require.NotNil(t, v)
	assert.Equal(t, []int{ExitCodeMemPanic}, exit.Codes())
	assert.Contains(t, out.String(), "Tried to free() an invalid pointer.")
	assert.Equal(t, 1, d.NumAllocs())
}

func TestDebugger_ReallocUntrackedAborts(t *testing.T) {
	d, out, exit := newTestDebugger(t)

	v := testutil.Recover(func() { d.Realloc(make([]byte, 4), 8) })

	err, ok := v.(error)
	require.True(t, ok)
	var ire *InvalidReleaseError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, "realloc", ire.Op)
	assert.Equal(t, []int{ExitCodeMemPanic}, exit.Codes())
	assert.Contains(t, out.String(), "MEMORY PANIC: Tried to realloc() an invalid pointer.")
}

func TestDebugger_OutOfMemory(t *testing.T) {
	d, out, exit := newTestDebugger(t, WithMemoryLimit(100))

	kept := d.MallocAt(60, site("app/cache.go", "fill", 7))

	v := testutil.Recover(func() {
		d.MallocAt(50, site("app/cache.go", "grow", 9))
	})

	err, ok := v.(error)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, []int{ExitCodeOutOfMemory}, exit.Codes())
	assert.Equal(t, 1, d.NumAllocs())

	want := "\n*****************\n* Out of Memory *\n*****************\n" +
		"In file: app/cache.go\nIn function: grow()\nOn line: 9\nCould not allocate 50 bytes.\n" +
		"\n*************\n* HEAP DUMP *\n*************\n" +
		fmt.Sprintf("Heap ptr: %#x of size: 60 Allocated in file: app/cache.go On line: 7\n", record.AddrOf(kept)) +
		"\nTotal size in bytes: 60\nTotal number of allocations: 1\n\n\n"
	assert.Equal(t, want, out.String())
}

func TestDebugger_HeapRefusalIsOutOfMemory(t *testing.T) {
	d, out, exit := newTestDebugger(t)

	kept := d.MallocAt(24, site("app/load.go", "load", 3))
	huge := math.MaxInt - 4

	v := testutil.Recover(func() {
		d.MallocAt(huge, site("app/load.go", "load", 4))
	})

	err, ok := v.(error)
	require.True(t, ok, "fatal path must panic with the error, got %v", v)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, []int{ExitCodeOutOfMemory}, exit.Codes())
	assert.Contains(t, out.String(), fmt.Sprintf("Could not allocate %d bytes.\n", huge))
	assert.Contains(t, out.String(),
		fmt.Sprintf("Heap ptr: %#x of size: 24 Allocated in file: app/load.go On line: 3\n", record.AddrOf(kept)))
	assert.Equal(t, 1, d.NumAllocs())
}

func TestDebugger_ReallocOutOfMemoryKeepsOldRecord(t *testing.T) {
	d, _, exit := newTestDebugger(t, WithMemoryLimit(64))

	b := d.Malloc(32)
	v := testutil.Recover(func() { d.Realloc(b, 128) })

	require.NotNil(t, v)
	assert.Equal(t, []int{ExitCodeOutOfMemory}, exit.Codes())

	r, ok := d.Lookup(b)
	require.True(t, ok)
	assert.Equal(t, 32, r.Size)
}

func TestDebugger_AbortUnknownError(t *testing.T) {
	m := &BasicMetricsCollector{}
	d, out, exit := newTestDebugger(t, WithMetricsCollector(m))

	cause := errors.New("boom")
	v := testutil.Recover(func() { d.Abort(cause) })

	assert.Equal(t, cause, v)
	assert.Equal(t, []int{ExitCodeArenaOverflow}, exit.Codes())
	assert.Contains(t, out.String(), "FATAL: boom")
}

func TestDebugger_ArenaOverflowDiagnostic(t *testing.T) {
	d, out, exit := newTestDebugger(t)

	err := &ArenaOverflowError{Arena: "scratch", Size: 8192, Capacity: 4096, Site: site("app/a.go", "build", 5)}
	testutil.Recover(func() { d.Abort(err) })

	assert.Equal(t, []int{ExitCodeArenaOverflow}, exit.Codes())
	assert.Equal(t,
		"Impossible to allocate 8192 bytes on arena: scratch. Error inside build() on line 5 in app/a.go.\n",
		out.String())
}

func TestDebugger_ColoredDiagnostic(t *testing.T) {
	d, out, _ := newTestDebugger(t, WithColor(true))

	testutil.Recover(func() { d.Free(make([]byte, 1)) })
	assert.Contains(t, out.String(), "\x1b[31m\nMEMORY PANIC")
}
