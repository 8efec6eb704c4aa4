package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/hupe1980/memdebug/internal/record"
)

// Walker visits records in place. Implementations hold whatever lock
// protects the records for the duration of the walk.
type Walker interface {
	Walk(fn func(record.Record) bool)
}

// Group aggregates the records of one call site.
type Group struct {
	Site  record.CallSite
	Count int
	Bytes int
}

// Totals is the footer of a dump.
type Totals struct {
	Bytes int
	Count int
}

// Sort orders recs by file and line. Function and address break ties so the
// order is deterministic.
func Sort(recs []record.Record) {
	slices.SortFunc(recs, func(a, b record.Record) int {
		return cmp.Or(
			cmp.Compare(a.Site.File, b.Site.File),
			cmp.Compare(a.Site.Line, b.Site.Line),
			cmp.Compare(a.Site.Function, b.Site.Function),
			cmp.Compare(a.Addr, b.Addr),
		)
	})
}

// Groups collapses runs of records that share file, function and line.
// recs should be sorted.
func Groups(recs []record.Record) []Group {
	var out []Group
	for _, r := range recs {
		if n := len(out); n > 0 && out[n-1].Site == r.Site {
			out[n-1].Count++
			out[n-1].Bytes += r.Size
			continue
		}
		out = append(out, Group{Site: r.Site, Count: 1, Bytes: r.Size})
	}
	return out
}

// Sum returns the totals of recs.
func Sum(recs []record.Record) Totals {
	t := Totals{Count: len(recs)}
	for _, r := range recs {
		t.Bytes += r.Size
	}
	return t
}

// WriteSorted sorts recs in place and writes the grouped dump.
func WriteSorted(w io.Writer, recs []record.Record, opts Options) error {
	return WriteSortedTotals(w, recs, Sum(recs), opts)
}

// WriteSortedTotals is WriteSorted with caller supplied totals.
func WriteSortedTotals(w io.Writer, recs []record.Record, totals Totals, opts Options) error {
	p := opts.Palette()
	Sort(recs)

	if err := WriteHeader(w, opts); err != nil {
		return err
	}
	for _, g := range Groups(recs) {
		if err := writeGroup(w, p, g); err != nil {
			return err
		}
	}
	return WriteTotals(w, totals)
}

// WriteLowMem writes one line per record in walk order, holding no copy of
// the records.
func WriteLowMem(w io.Writer, src Walker, opts Options) error {
	p := opts.Palette()
	if err := WriteHeader(w, opts); err != nil {
		return err
	}

	var (
		totals Totals
		err    error
	)
	src.Walk(func(r record.Record) bool {
		_, err = fmt.Fprintf(w,
			"%sHeap ptr: %#x%s%s of size: %d%s%s Allocated in file: %s%s%s On line: %d\n%s",
			p.Pointer, r.Addr, p.Reset,
			p.Bytes, r.Size, p.Reset,
			p.File, r.Site.File, p.Reset,
			p.Line, r.Site.Line, p.Reset)
		totals.Bytes += r.Size
		totals.Count++
		return err == nil
	})
	if err != nil {
		return err
	}
	return WriteTotals(w, totals)
}

// WriteHeader writes the dump banner.
func WriteHeader(w io.Writer, opts Options) error {
	p := opts.Palette()
	_, err := fmt.Fprintf(w, "%s\n*************\n* HEAP DUMP *\n*************\n%s", p.Head, p.Reset)
	return err
}

// WriteTotals writes the dump footer.
func WriteTotals(w io.Writer, t Totals) error {
	_, err := fmt.Fprintf(w, "\nTotal size in bytes: %d\nTotal number of allocations: %d\n\n\n", t.Bytes, t.Count)
	return err
}

func writeGroup(w io.Writer, p Palette, g Group) error {
	what := "pointers have been allocated"
	if g.Count == 1 {
		what = "pointer has been allocated"
	}
	_, err := fmt.Fprintf(w,
		"%s%d %s%s%s totalling %d bytes%s%s in file: %s%s%s in function: %s()%s%s on line: %d.\n%s",
		p.Pointer, g.Count, what, p.Reset,
		p.Bytes, g.Bytes, p.Reset,
		p.File, g.Site.File, p.Reset,
		p.Func, g.Site.Function, p.Reset,
		p.Line, g.Site.Line, p.Reset)
	return err
}
