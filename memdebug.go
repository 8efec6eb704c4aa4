package memdebug

import (
	"context"
	"io"
	"sync"

	"github.com/hupe1980/memdebug/internal/record"
	"github.com/hupe1980/memdebug/internal/registry"
	"github.com/hupe1980/memdebug/internal/resource"
	"github.com/hupe1980/memdebug/report"
	"github.com/hupe1980/memdebug/sysalloc"
)

// Debugger tracks every live allocation it hands out. It is safe for
// concurrent use.
type Debugger struct {
	table   *registry.Table
	alloc   sysalloc.Allocator
	rc      *resource.Controller
	logger  *Logger
	metrics MetricsCollector
	exit    func(int)

	outMu   sync.Mutex
	out     io.Writer
	reportO report.Options
}

// Stats summarises the live allocation set.
type Stats struct {
	NumAllocs    int
	Bytes        int
	TableSize    int
	UsedBuckets  int
	LongestChain int
}

// New creates a Debugger.
func New(optFns ...Option) *Debugger {
	o := applyOptions(optFns)
	return &Debugger{
		table: registry.New(o.tableSize),
		alloc: o.allocator,
		rc: resource.NewController(resource.Config{
			TraceEventsPerSec: o.traceRate,
			TraceBurst:        o.traceBurst,
		}),
		logger:  o.logger,
		metrics: o.metricsCollector,
		exit:    o.exit,
		out:     o.out,
		reportO: report.Options{Color: o.useColor()},
	}
}

// Output returns the writer dumps and diagnostics go to.
func (d *Debugger) Output() io.Writer { return d.out }

// ReportOptions returns the rendering options of the Debugger's dumps.
func (d *Debugger) ReportOptions() report.Options { return d.reportO }

// Logger returns the Debugger's logger.
func (d *Debugger) Logger() *Logger { return d.logger }

// Malloc returns a tracked buffer of len size attributed to the caller.
func (d *Debugger) Malloc(size int) []byte {
	return d.MallocAt(size, Caller(1))
}

// MallocAt returns a tracked buffer of len size attributed to site.
// If the system allocator fails, the process exits with ExitCodeOutOfMemory.
func (d *Debugger) MallocAt(size int, site CallSite) []byte {
	b, err := d.alloc.Alloc(size)
	if !Enabled {
		return b
	}
	if err != nil {
		d.Abort(&OutOfMemoryError{Size: size, Site: site, cause: err})
	}

	rec := record.Of(b, site)
	d.table.Add(rec)
	d.metrics.RecordAlloc(size)
	d.trace(func(ctx context.Context) {
		d.logger.LogAlloc(ctx, rec.Addr, size, site)
	})
	return b
}

// Realloc resizes a tracked buffer, attributing the result to the caller.
func (d *Debugger) Realloc(b []byte, size int) []byte {
	return d.ReallocAt(b, size, Caller(1))
}

// ReallocAt resizes b to size and attributes the result to site. The first
// min(len(b), size) bytes are preserved and b must not be used afterwards.
// ReallocAt(nil, n, site) is MallocAt(n, site). If b is not tracked the
// process exits with ExitCodeMemPanic.
func (d *Debugger) ReallocAt(b []byte, size int, site CallSite) []byte {
	if !Enabled {
		nb, _ := d.alloc.Resize(b, size)
		return nb
	}
	if b == nil {
		return d.MallocAt(size, site)
	}

	var (
		addr    = record.AddrOf(b)
		oldSize int
		nb      []byte
		found   bool
		resErr  error
	)
	_ = d.table.Do(func(tx *registry.Tx) error {
		old, ok := tx.Lookup(addr)
		if !ok {
			return nil
		}
		found = true
		oldSize = old.Size

		nb, resErr = d.alloc.Resize(old.Bytes(), size)
		if resErr != nil {
			return nil
		}
		tx.Remove(addr)
		tx.Add(record.Of(nb, site))
		return nil
	})

	if !found {
		d.Abort(&InvalidReleaseError{Addr: addr, Op: "realloc", Site: site})
	}
	if resErr != nil {
		d.Abort(&OutOfMemoryError{Size: size, Site: site, cause: resErr})
	}

	d.metrics.RecordResize(oldSize, size)
	d.trace(func(ctx context.Context) {
		d.logger.LogRealloc(ctx, addr, record.AddrOf(nb), size, site)
	})
	return nb
}

// Free releases a tracked buffer.
func (d *Debugger) Free(b []byte) {
	d.FreeAt(b, Caller(1))
}

// FreeAt releases b. FreeAt(nil, site) is a no-op. If b is not tracked the
// process exits with ExitCodeMemPanic.
func (d *Debugger) FreeAt(b []byte, site CallSite) {
	if b == nil {
		return
	}
	if !Enabled {
		_ = d.alloc.Free(b)
		return
	}

	addr := record.AddrOf(b)
	rec, ok := d.table.Remove(addr)
	if !ok {
		d.Abort(&InvalidReleaseError{Addr: addr, Op: "free", Site: site})
	}

	if err := d.alloc.Free(rec.Bytes()); err != nil {
		d.logger.Warn("system free failed", "addr", addr, "error", err)
	}
	d.metrics.RecordFree(rec.Size)
	d.trace(func(ctx context.Context) {
		d.logger.LogFree(ctx, addr, site)
	})
}

// NumAllocs returns the number of live tracked allocations.
func (d *Debugger) NumAllocs() int {
	if !Enabled {
		return 0
	}
	return d.table.Len()
}

// Lookup returns the record of a live allocation.
func (d *Debugger) Lookup(b []byte) (Record, bool) {
	if !Enabled {
		return Record{}, false
	}
	return d.table.Lookup(record.AddrOf(b))
}

// Records returns the live records sorted by file and line.
func (d *Debugger) Records() []Record {
	if !Enabled {
		return nil
	}
	recs := d.table.Records()
	report.Sort(recs)
	return recs
}

// Stats returns a snapshot of the live allocation set.
func (d *Debugger) Stats() Stats {
	if !Enabled {
		return Stats{}
	}
	rs := d.table.Stats()
	s := Stats{
		NumAllocs:    rs.Live,
		TableSize:    rs.TableSize,
		UsedBuckets:  rs.UsedBuckets,
		LongestChain: rs.LongestChain,
	}
	d.table.Walk(func(r record.Record) bool {
		s.Bytes += r.Size
		return true
	})
	return s
}

// WriteHeap writes the sorted heap dump to w.
func (d *Debugger) WriteHeap(w io.Writer) error {
	if !Enabled {
		return nil
	}
	return report.WriteSorted(w, d.table.Records(), d.reportO)
}

// PrintHeap writes the sorted heap dump to the Debugger's output.
func (d *Debugger) PrintHeap() {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	if err := d.WriteHeap(d.out); err != nil {
		d.logger.Warn("heap dump failed", "error", err)
	}
}

// Close releases the system allocator if it holds resources. Buffers still
// live become invalid.
func (d *Debugger) Close() error {
	return sysalloc.Close(d.alloc)
}

func (d *Debugger) trace(fn func(ctx context.Context)) {
	ctx := context.Background()
	if !d.logger.tracing(ctx) || !d.rc.AllowTrace() {
		return
	}
	fn(ctx)
}
