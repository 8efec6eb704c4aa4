//go:build !nomemdebug

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdebug"
	"github.com/hupe1980/memdebug/snapshot"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeSnapshot(t *testing.T, name string, entries ...snapshot.Entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, snapshot.Save(path, &snapshot.Snapshot{Entries: entries}))
	return path
}

func entry(addr uint64, size int, fn string, line int) snapshot.Entry {
	return snapshot.Entry{Addr: addr, Size: size, Site: memdebug.CallSite{File: "app/main.go", Function: fn, Line: line}}
}

func TestShow(t *testing.T) {
	path := writeSnapshot(t, "a.mdsn", entry(1, 8, "main", 3), entry(2, 8, "main", 3))

	out, err := run(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "* HEAP DUMP *")
	assert.Contains(t, out, "2 pointers have been allocated totalling 16 bytes in file: app/main.go in function: main() on line: 3.")
	assert.NotContains(t, out, "\x1b[")
}

func TestShow_JSON(t *testing.T) {
	path := writeSnapshot(t, "a.mdsn", entry(1, 8, "main", 3))

	out, err := run(t, "show", "--json", path)
	require.NoError(t, err)

	var s snapshot.Snapshot
	require.NoError(t, gojson.Unmarshal([]byte(out), &s))
	require.Len(t, s.Entries, 1)
	assert.Equal(t, 8, s.Entries[0].Size)
}

func TestShow_MissingFile(t *testing.T) {
	_, err := run(t, "show", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestShow_ArgCount(t *testing.T) {
	_, err := run(t, "show")
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	before := writeSnapshot(t, "before.mdsn", entry(1, 8, "main", 3))
	after := writeSnapshot(t, "after.mdsn", entry(1, 8, "main", 3), entry(2, 64, "leak", 9))

	out, err := run(t, "diff", before, after)
	require.NoError(t, err)
	assert.Equal(t, "+1 allocations +64 bytes in file: app/main.go in function: leak() on line: 9\n", out)

	out, err = run(t, "diff", after, after)
	require.NoError(t, err)
	assert.Equal(t, "No differences.\n", out)
}

func TestDiff_GrowthOnlyJSON(t *testing.T) {
	before := writeSnapshot(t, "before.mdsn", entry(1, 8, "gone", 3))
	after := writeSnapshot(t, "after.mdsn", entry(2, 64, "leak", 9))

	out, err := run(t, "diff", "--growth-only", "--json", before, after)
	require.NoError(t, err)

	var deltas []snapshot.Delta
	require.NoError(t, gojson.Unmarshal([]byte(out), &deltas))
	require.Len(t, deltas, 1)
	assert.Equal(t, "leak", deltas[0].Site.Function)
}

func TestDemo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.mdsn")

	out, err := run(t, "demo", "--out", path, "--workers", "2", "--iterations", "50", "--leak-every", "10", "--compression", "lz4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Wrote "+path+": 10 live allocations"), out)

	s, err := snapshot.Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Entries, 10)
}

func TestDemo_UnknownAllocator(t *testing.T) {
	_, err := run(t, "demo", "--out", filepath.Join(t.TempDir(), "x"), "--allocator", "sbrk")
	assert.ErrorContains(t, err, "unknown allocator")
}
