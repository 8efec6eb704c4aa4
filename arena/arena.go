package arena

import (
	"context"
	"io"

	"github.com/hupe1980/memdebug"
	"github.com/hupe1980/memdebug/internal/list"
	"github.com/hupe1980/memdebug/internal/mem"
	"github.com/hupe1980/memdebug/internal/mmap"
	"github.com/hupe1980/memdebug/internal/record"
	"github.com/hupe1980/memdebug/report"
)

// DefaultRegionPages is the region size in system pages used when no
// region size is configured.
const DefaultRegionPages = 128

// initialRecords is the starting capacity of a region's record list.
const initialRecords = 50

type options struct {
	regionSize int
}

// Option configures an Arena.
type Option func(*options)

// WithRegionSize sets the byte size of every region. The size is rounded up
// to a multiple of 16 so a request of exactly n bytes always fits.
// If n <= 0, DefaultRegionPages system pages are used.
func WithRegionSize(n int) Option {
	return func(o *options) {
		o.regionSize = n
	}
}

type region struct {
	buf    []byte
	cursor int
	next   *region
	given  *list.List[memdebug.Record]
}

func (r *region) remaining() int { return len(r.buf) - r.cursor }

// Stats summarises an arena.
type Stats struct {
	Regions       int // Regions in the chain
	RegionSize    int // Bytes per region
	BytesUsed     int // Sum of region cursors
	BytesReserved int // Regions * RegionSize
	Allocations   int // Recorded hand-outs
}

// Arena is a chain of bump-allocated regions.
type Arena struct {
	d          *memdebug.Debugger
	name       string
	regionSize int
	head, tail *region
	count      int
	destroyed  bool
	logger     *memdebug.Logger
}

// Create returns an arena named name whose first region is allocated
// immediately from d.
func Create(d *memdebug.Debugger, name string, optFns ...Option) *Arena {
	return CreateAt(d, name, memdebug.Caller(1), optFns...)
}

// CreateAt is Create with an explicit call site for the first region.
func CreateAt(d *memdebug.Debugger, name string, site memdebug.CallSite, optFns ...Option) *Arena {
	var o options
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.regionSize <= 0 {
		o.regionSize = DefaultRegionPages * mmap.PageSize()
	}
	if r, ok := mem.TryAlignUp(o.regionSize, mem.MaxAlign); ok {
		o.regionSize = r
	}

	a := &Arena{
		d:          d,
		name:       name,
		regionSize: o.regionSize,
		logger:     d.Logger().WithArena(name),
	}
	a.grow(site)
	a.logger.LogArena(context.Background(), name, "created", a.count)
	return a
}

// Name returns the arena name.
func (a *Arena) Name() string { return a.name }

// RegionSize returns the byte size of every region.
func (a *Arena) RegionSize() int { return a.regionSize }

// NumRegions returns the number of regions in the chain.
func (a *Arena) NumRegions() int { return a.count }

func (a *Arena) grow(site memdebug.CallSite) {
	r := &region{buf: a.d.MallocAt(a.regionSize, site)}
	if memdebug.Enabled {
		r.given = list.New[memdebug.Record](initialRecords)
	}
	if a.tail == nil {
		a.head = r
	} else {
		a.tail.next = r
	}
	a.tail = r
	a.count++
}

func (a *Arena) checkLive() {
	if a.destroyed {
		panic("arena: use after Destroy()")
	}
}

// Alloc returns size bytes from the arena attributed to the caller.
func (a *Arena) Alloc(size int) []byte {
	return a.AllocAt(size, memdebug.Caller(1))
}

// AllocAt returns size bytes from the arena attributed to site. The slice has
// len size; its capacity extends to the rounded size. A request whose
// rounded size exceeds the region size is fatal (memdebug.ExitCodeArenaOverflow).
func (a *Arena) AllocAt(size int, site memdebug.CallSite) []byte {
	a.checkLive()
	if size < 0 {
		panic("arena: negative size")
	}

	rounded, ok := mem.TryAlignUp(size, mem.MaxAlign)
	if !ok || rounded > a.regionSize {
		if !ok {
			rounded = size
		}
		a.d.Abort(&memdebug.ArenaOverflowError{
			Arena:    a.name,
			Size:     rounded,
			Capacity: a.regionSize,
			Site:     site,
		})
	}
	if rounded > a.tail.remaining() {
		a.grow(site)
		a.logger.LogArena(context.Background(), a.name, "grown", a.count)
	}

	t := a.tail
	b := t.buf[t.cursor : t.cursor+size : t.cursor+rounded]
	t.cursor += rounded

	if memdebug.Enabled {
		t.given.Append(record.Of(b, site))
	}
	return b
}

// Pop gives back the top size bytes (rounded) of the newest region. The
// cursor never drops below zero. Records of popped memory are kept.
func (a *Arena) Pop(size int) {
	a.checkLive()
	t := a.tail
	rounded, ok := mem.TryAlignUp(size, mem.MaxAlign)
	if !ok || rounded > t.cursor {
		t.cursor = 0
		return
	}
	t.cursor -= rounded
}

// Destroy frees every region through the Debugger and drops all records.
// The arena must not be used afterwards.
func (a *Arena) Destroy() {
	a.DestroyAt(memdebug.Caller(1))
}

// DestroyAt is Destroy with an explicit call site for the releases.
func (a *Arena) DestroyAt(site memdebug.CallSite) {
	a.checkLive()
	for r := a.head; r != nil; {
		next := r.next
		a.d.FreeAt(r.buf, site)
		if r.given != nil {
			r.given.Destroy()
		}
		r.buf, r.next, r.given = nil, nil, nil
		r = next
	}
	a.logger.LogArena(context.Background(), a.name, "destroyed", a.count)
	a.head, a.tail = nil, nil
	a.count = 0
	a.destroyed = true
}

// Stats returns a snapshot of the arena.
func (a *Arena) Stats() Stats {
	a.checkLive()
	s := Stats{Regions: a.count, RegionSize: a.regionSize, BytesReserved: a.count * a.regionSize}
	for r := a.head; r != nil; r = r.next {
		s.BytesUsed += r.cursor
		if r.given != nil {
			s.Allocations += r.given.Len()
		}
	}
	return s
}

// Records returns every hand-out recorded by the arena, oldest region first.
func (a *Arena) Records() []memdebug.Record {
	a.checkLive()
	all := list.New[memdebug.Record](0)
	for r := a.head; r != nil; r = r.next {
		if r.given != nil {
			all.AppendAll(r.given)
		}
	}
	return all.Slice()
}

// WriteHeap writes the sorted dump of the arena's hand-outs to w. The byte
// total is the sum of region cursors.
func (a *Arena) WriteHeap(w io.Writer) error {
	if !memdebug.Enabled {
		return nil
	}
	s := a.Stats()
	recs := a.Records()
	return report.WriteSortedTotals(w, recs, report.Totals{Bytes: s.BytesUsed, Count: len(recs)}, a.d.ReportOptions())
}

// PrintHeap writes the arena dump to the Debugger's output.
func (a *Arena) PrintHeap() {
	if err := a.WriteHeap(a.d.Output()); err != nil {
		a.logger.Warn("arena heap dump failed", "error", err)
	}
}
