// Package registry implements the process-wide table of live allocations.
//
// The table has a fixed number of buckets. Each bucket holds at most one
// head record inline plus a singly linked overflow chain for colliding
// addresses. A single mutex serialises every mutation and every full scan.
package registry

import (
	"encoding/binary"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/memdebug/internal/record"
)

// DefaultTableSize is the number of buckets used when New is given a
// non-positive size.
const DefaultTableSize = 100000

type node struct {
	rec  record.Record
	next *node
}

type bucket struct {
	head record.Record
	used bool
	next *node
}

// Table is an address-keyed hash table of allocation records.
type Table struct {
	mu       sync.Mutex
	size     int
	buckets  []bucket        // nil until first use
	occupied *roaring.Bitmap // buckets with a used head
	live     int
}

// Stats summarises the table shape.
type Stats struct {
	TableSize    int // Number of buckets
	UsedBuckets  int // Buckets with at least one record
	LongestChain int // Records in the fullest bucket
	Live         int // Live records
}

// New creates a table with size buckets.
// If size <= 0, DefaultTableSize is used.
func New(size int) *Table {
	if size <= 0 {
		size = DefaultTableSize
	}
	return &Table{size: size}
}

// Size returns the number of buckets.
func (t *Table) Size() int { return t.size }

// Index returns the bucket index for addr.
func (t *Table) Index(addr uintptr) int {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(addr))
	return int(xxhash.Sum64(b[:]) % uint64(t.size)) //nolint:gosec // result < size
}

func (t *Table) init() {
	if t.buckets != nil {
		return
	}
	t.buckets = make([]bucket, t.size)
	t.occupied = roaring.New()
}

// Do runs fn with the table lock held. fn must not call locking methods.
func (t *Table) Do(fn func(tx *Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.init()
	return fn(&Tx{t: t})
}

// Add inserts r.
func (t *Table) Add(r record.Record) {
	_ = t.Do(func(tx *Tx) error {
		tx.Add(r)
		return nil
	})
}

// Remove deletes the record for addr and reports whether it existed.
func (t *Table) Remove(addr uintptr) (record.Record, bool) {
	var (
		r  record.Record
		ok bool
	)
	_ = t.Do(func(tx *Tx) error {
		r, ok = tx.Remove(addr)
		return nil
	})
	return r, ok
}

// Lookup returns the record for addr.
func (t *Table) Lookup(addr uintptr) (record.Record, bool) {
	var (
		r  record.Record
		ok bool
	)
	_ = t.Do(func(tx *Tx) error {
		r, ok = tx.Lookup(addr)
		return nil
	})
	return r, ok
}

// Len returns the number of live records.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// Records returns a copy of every live record in bucket order.
func (t *Table) Records() []record.Record {
	var out []record.Record
	_ = t.Do(func(tx *Tx) error {
		out = tx.Records()
		return nil
	})
	return out
}

// Walk calls fn for every live record in bucket order with the lock held,
// stopping early when fn returns false.
func (t *Table) Walk(fn func(record.Record) bool) {
	_ = t.Do(func(tx *Tx) error {
		tx.Walk(fn)
		return nil
	})
}

// Stats returns a snapshot of the table shape.
func (t *Table) Stats() Stats {
	var s Stats
	_ = t.Do(func(tx *Tx) error {
		s = Stats{
			TableSize:   t.size,
			UsedBuckets: int(t.occupied.GetCardinality()), //nolint:gosec // bounded by size
			Live:        t.live,
		}
		it := t.occupied.Iterator()
		for it.HasNext() {
			b := &t.buckets[it.Next()]
			n := 1
			for c := b.next; c != nil; c = c.next {
				n++
			}
			if n > s.LongestChain {
				s.LongestChain = n
			}
		}
		return nil
	})
	return s
}

// Tx gives lock-free access to a table whose lock is held by Do.
type Tx struct {
	t *Table
}

// Add inserts r. The caller guarantees r.Addr is not already present.
func (tx *Tx) Add(r record.Record) {
	t := tx.t
	t.live++

	idx := t.Index(r.Addr)
	b := &t.buckets[idx]
	if !b.used {
		b.head = r
		b.used = true
		t.occupied.Add(uint32(idx)) //nolint:gosec // idx < size
		return
	}

	n := &node{rec: r}
	if b.next == nil {
		b.next = n
		return
	}
	tail := b.next
	for tail.next != nil {
		tail = tail.next
	}
	tail.next = n
}

// Remove deletes the record for addr and reports whether it existed.
func (tx *Tx) Remove(addr uintptr) (record.Record, bool) {
	t := tx.t
	idx := t.Index(addr)
	b := &t.buckets[idx]
	if !b.used {
		return record.Record{}, false
	}

	if b.head.Addr == addr {
		removed := b.head
		if succ := b.next; succ != nil {
			// Promote the successor into the inline slot.
			b.head = succ.rec
			b.next = succ.next
		} else {
			b.head = record.Record{}
			b.used = false
			t.occupied.Remove(uint32(idx)) //nolint:gosec // idx < size
		}
		t.live--
		return removed, true
	}

	var prev *node
	for cur := b.next; cur != nil; prev, cur = cur, cur.next {
		if cur.rec.Addr != addr {
			continue
		}
		if prev == nil {
			b.next = cur.next
		} else {
			prev.next = cur.next
		}
		t.live--
		return cur.rec, true
	}
	return record.Record{}, false
}

// Lookup returns the record for addr.
func (tx *Tx) Lookup(addr uintptr) (record.Record, bool) {
	b := &tx.t.buckets[tx.t.Index(addr)]
	if !b.used {
		return record.Record{}, false
	}
	if b.head.Addr == addr {
		return b.head, true
	}
	for cur := b.next; cur != nil; cur = cur.next {
		if cur.rec.Addr == addr {
			return cur.rec, true
		}
	}
	return record.Record{}, false
}

// Len returns the number of live records.
func (tx *Tx) Len() int { return tx.t.live }

// Records returns a copy of every live record, visiting occupied buckets
// only.
func (tx *Tx) Records() []record.Record {
	t := tx.t
	out := make([]record.Record, 0, t.live)
	it := t.occupied.Iterator()
	for it.HasNext() {
		b := &t.buckets[it.Next()]
		out = append(out, b.head)
		for c := b.next; c != nil; c = c.next {
			out = append(out, c.rec)
		}
	}
	return out
}

// Walk visits every bucket of the table directly. It allocates nothing, so it
// is safe to use when the system allocator is failing.
func (tx *Tx) Walk(fn func(record.Record) bool) {
	for i := range tx.t.buckets {
		b := &tx.t.buckets[i]
		if !b.used {
			continue
		}
		if !fn(b.head) {
			return
		}
		for c := b.next; c != nil; c = c.next {
			if !fn(c.rec) {
				return
			}
		}
	}
}
