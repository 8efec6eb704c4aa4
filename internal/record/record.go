// Package record defines the allocation record shared by the registry,
// the reporters and the arena.
package record

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unsafe"
)

// CallSite is the source location an allocation is attributed to.
type CallSite struct {
	File     string `json:"file"`
	Function string `json:"function"`
	Line     int    `json:"line"`
}

// String formats the site as "file:line function()".
func (c CallSite) String() string {
	return c.File + ":" + strconv.Itoa(c.Line) + " " + c.Function + "()"
}

// LogValue implements slog.LogValuer.
func (c CallSite) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", c.File),
		slog.String("function", c.Function),
		slog.Int("line", c.Line),
	)
}

// Caller returns the call site skip frames above the caller of Caller.
func Caller(skip int) CallSite {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallSite{File: "???", Function: "???"}
	}
	fn := "???"
	if f := runtime.FuncForPC(pc); f != nil {
		fn = shortFuncName(f.Name())
	}
	return CallSite{File: shortFile(file), Function: fn, Line: line}
}

// shortFile keeps the parent directory and the base name.
func shortFile(path string) string {
	dir, base := filepath.Split(filepath.ToSlash(path))
	dir = strings.TrimSuffix(dir, "/")
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[i+1:]
	}
	if dir == "" {
		return base
	}
	return dir + "/" + base
}

// shortFuncName strips the import path and package name:
// "github.com/x/pkg.(*T).M" becomes "(*T).M".
func shortFuncName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Record describes one live allocation. Identity is Addr.
type Record struct {
	Addr uintptr  `json:"addr"`
	Size int      `json:"size"`
	Site CallSite `json:"site"`

	// buf keeps the described memory reachable for as long as the record is
	// live, so the Go runtime cannot recycle a tracked address.
	buf []byte
}

// Of builds a record that owns a reference to buf.
func Of(buf []byte, site CallSite) Record {
	return Record{Addr: AddrOf(buf), Size: len(buf), Site: site, buf: buf}
}

// Bytes returns the buffer the record describes, or nil for records that
// were built without one.
func (r Record) Bytes() []byte { return r.buf }

// AddrOf returns the address of the first byte of b, or 0 when b has no
// backing array.
func AddrOf(b []byte) uintptr {
	if cap(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b))) //nolint:gosec // address is used as a map key only
}
