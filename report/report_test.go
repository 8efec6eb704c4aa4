package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdebug/internal/record"
)

func rec(addr uintptr, size int, file, fn string, line int) record.Record {
	return record.Record{Addr: addr, Size: size, Site: record.CallSite{File: file, Function: fn, Line: line}}
}

type sliceWalker []record.Record

func (s sliceWalker) Walk(fn func(record.Record) bool) {
	for _, r := range s {
		if !fn(r) {
			return
		}
	}
}

func TestSort_ByFileThenLine(t *testing.T) {
	recs := []record.Record{
		rec(3, 1, "b.go", "f", 1),
		rec(2, 1, "a.go", "f", 9),
		rec(1, 1, "a.go", "f", 2),
	}
	Sort(recs)

	assert.Equal(t, "a.go", recs[0].Site.File)
	assert.Equal(t, 2, recs[0].Site.Line)
	assert.Equal(t, 9, recs[1].Site.Line)
	assert.Equal(t, "b.go", recs[2].Site.File)
}

func TestGroups_CollapseRuns(t *testing.T) {
	recs := []record.Record{
		rec(1, 10, "a.go", "f", 1),
		rec(2, 20, "a.go", "f", 1),
		rec(3, 5, "a.go", "g", 2),
	}
	groups := Groups(recs)

	require.Len(t, groups, 2)
	assert.Equal(t, Group{Site: recs[0].Site, Count: 2, Bytes: 30}, groups[0])
	assert.Equal(t, Group{Site: recs[2].Site, Count: 1, Bytes: 5}, groups[1])
}

func TestWriteSorted_Plain(t *testing.T) {
	recs := []record.Record{
		rec(0x30, 5, "main/x.go", "g", 20),
		rec(0x10, 10, "main/x.go", "f", 10),
		rec(0x20, 20, "main/x.go", "f", 10),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSorted(&buf, recs, Options{}))

	want := "\n*************\n* HEAP DUMP *\n*************\n" +
		"2 pointers have been allocated totalling 30 bytes in file: main/x.go in function: f() on line: 10.\n" +
		"1 pointer has been allocated totalling 5 bytes in file: main/x.go in function: g() on line: 20.\n" +
		"\nTotal size in bytes: 35\nTotal number of allocations: 3\n\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSorted_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSorted(&buf, nil, Options{}))

	want := "\n*************\n* HEAP DUMP *\n*************\n" +
		"\nTotal size in bytes: 0\nTotal number of allocations: 0\n\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSortedTotals_CustomTotals(t *testing.T) {
	recs := []record.Record{rec(0x10, 16, "a/a.go", "f", 1)}

	var buf bytes.Buffer
	require.NoError(t, WriteSortedTotals(&buf, recs, Totals{Bytes: 48, Count: 1}, Options{}))
	assert.Contains(t, buf.String(), "Total size in bytes: 48\n")
}

func TestWriteLowMem_Plain(t *testing.T) {
	w := sliceWalker{
		rec(0x1000, 8, "a/a.go", "f", 3),
		rec(0x2000, 4, "a/b.go", "g", 7),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLowMem(&buf, w, Options{}))

	want := "\n*************\n* HEAP DUMP *\n*************\n" +
		"Heap ptr: 0x1000 of size: 8 Allocated in file: a/a.go On line: 3\n" +
		"Heap ptr: 0x2000 of size: 4 Allocated in file: a/b.go On line: 7\n" +
		"\nTotal size in bytes: 12\nTotal number of allocations: 2\n\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSorted_Color(t *testing.T) {
	recs := []record.Record{rec(0x10, 1, "a/a.go", "f", 1)}

	var buf bytes.Buffer
	require.NoError(t, WriteSorted(&buf, recs, Options{Color: true}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, ansiRed+"\n*************"))
	assert.Contains(t, out, ansiMagenta+"1 pointer has been allocated"+ansiReset)
	assert.Contains(t, out, ansiGreen+" in file: a/a.go"+ansiReset)
	assert.Contains(t, out, ansiYellow+" in function: f()"+ansiReset)
	assert.Contains(t, out, ansiCyan+" on line: 1.\n"+ansiReset)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteLowMem_StopsOnWriteError(t *testing.T) {
	w := sliceWalker{rec(1, 1, "a", "f", 1)}
	assert.Error(t, WriteLowMem(failWriter{}, w, Options{}))
}
