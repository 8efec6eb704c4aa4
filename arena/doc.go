// Package arena provides a region allocator layered over a memdebug.Debugger.
//
// An Arena is a chain of fixed-size regions. Allocation bumps a cursor in
// the newest region; when a request does not fit, a new region is chained
// and serves it. Every size is rounded up to memdebug's maximum alignment
// (16 bytes). Memory is given back all at once by Destroy, or from the top of
// the newest region by Pop.
//
// Region buffers come from the Debugger, so they show up in its heap dump.
// The hand-outs inside them are recorded per region and printed by
// Arena.PrintHeap.
//
// # Concurrency Model
//
// An Arena is owned by a single goroutine and is not synchronised.
//
// # Typed Allocation
//
//	a := arena.Create(d, "parser")
//	defer a.Destroy()
//	n := arena.New[node](a)
//	kids := arena.NewSlice[*node](a, 4)
//
// Types placed in an arena backed by off-heap memory must not hold Go
// pointers.
package arena
