// Package list provides a growable, append-only list used for per-arena
// allocation bookkeeping.
//
// Transforms (Map, Filter, FlatMap, ForEach) take ownership of their input:
// the input list is destroyed and must not be used afterwards. The result is
// either a new list or the input's storage reused.
package list

import "iter"

// List is a growable list of T. The zero value is not usable; create lists
// with New or Of.
type List[T any] struct {
	items     []T
	destroyed bool
}

// New creates an empty list with the given capacity.
func New[T any](capacity int) *List[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &List[T]{items: make([]T, 0, capacity)}
}

// Of creates a list holding a copy of items.
func Of[T any](items ...T) *List[T] {
	l := New[T](len(items))
	l.items = append(l.items, items...)
	return l
}

// grow reserves room for n more items using the cap*3/2+16 policy.
func (l *List[T]) grow(n int) {
	need := len(l.items) + n
	if need <= cap(l.items) {
		return
	}
	newCap := cap(l.items)*3/2 + 16
	if newCap < need {
		newCap = need
	}
	items := make([]T, len(l.items), newCap)
	copy(items, l.items)
	l.items = items
}

// Append adds v at the end of the list.
func (l *List[T]) Append(v T) {
	l.panicIfDestroyed()
	l.grow(1)
	l.items = append(l.items, v)
}

// AppendAll appends every item of other. other is left untouched.
func (l *List[T]) AppendAll(other *List[T]) {
	l.panicIfDestroyed()
	other.panicIfDestroyed()
	l.grow(len(other.items))
	l.items = append(l.items, other.items...)
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.panicIfDestroyed()
	return len(l.items)
}

// Cap returns the current capacity.
func (l *List[T]) Cap() int {
	l.panicIfDestroyed()
	return cap(l.items)
}

// At returns the i-th item.
func (l *List[T]) At(i int) T {
	l.panicIfDestroyed()
	return l.items[i]
}

// Peek returns a pointer to the last item. It panics on an empty list.
func (l *List[T]) Peek() *T {
	l.panicIfDestroyed()
	return &l.items[len(l.items)-1]
}

// Pop drops the last item. It panics on an empty list.
func (l *List[T]) Pop() {
	l.panicIfDestroyed()
	var zero T
	l.items[len(l.items)-1] = zero
	l.items = l.items[:len(l.items)-1]
}

// Values iterates over the items in order.
func (l *List[T]) Values() iter.Seq[T] {
	l.panicIfDestroyed()
	return func(yield func(T) bool) {
		for _, v := range l.items {
			if !yield(v) {
				return
			}
		}
	}
}

// Slice returns the items as a slice sharing the list's storage.
func (l *List[T]) Slice() []T {
	l.panicIfDestroyed()
	return l.items
}

// Clone returns an independent copy with capacity equal to the length.
func (l *List[T]) Clone() *List[T] {
	return Of(l.Slice()...)
}

// Destroy releases the storage. Any later use panics.
func (l *List[T]) Destroy() {
	l.items = nil
	l.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (l *List[T]) Destroyed() bool { return l.destroyed }

func (l *List[T]) panicIfDestroyed() {
	if l.destroyed {
		panic("list: use after Destroy()")
	}
}

// Map consumes l and returns a new list of fn applied to each item.
func Map[T, U any](l *List[T], fn func(T) U) *List[U] {
	out := New[U](l.Len())
	for _, v := range l.items {
		out.items = append(out.items, fn(v))
	}
	l.Destroy()
	return out
}

// Filter consumes l and returns the items for which keep returns true.
// The input's storage is reused for the result.
func Filter[T any](l *List[T], keep func(T) bool) *List[T] {
	l.panicIfDestroyed()
	kept := l.items[:0]
	for _, v := range l.items {
		if keep(v) {
			kept = append(kept, v)
		}
	}
	var zero T
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = zero
	}
	out := &List[T]{items: kept}
	l.Destroy()
	return out
}

// FlatMap consumes l and every list fn returns, concatenating the results.
func FlatMap[T, U any](l *List[T], fn func(T) *List[U]) *List[U] {
	parts := make([]*List[U], 0, l.Len())
	total := 0
	for _, v := range l.items {
		p := fn(v)
		total += p.Len()
		parts = append(parts, p)
	}
	l.Destroy()

	out := New[U](total)
	for _, p := range parts {
		out.items = append(out.items, p.items...)
		p.Destroy()
	}
	return out
}

// ForEach consumes l, calling fn for each item in order.
func ForEach[T any](l *List[T], fn func(T)) {
	for _, v := range l.Slice() {
		fn(v)
	}
	l.Destroy()
}
