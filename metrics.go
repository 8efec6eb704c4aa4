package memdebug

import (
	"sync/atomic"
)

// Fault identifies a fatal memory fault.
type Fault string

// Fault kinds.
const (
	FaultOutOfMemory    Fault = "out_of_memory"
	FaultInvalidRelease Fault = "invalid_release"
	FaultArenaOverflow  Fault = "arena_overflow"
)

// FaultOf classifies a fatal error.
func FaultOf(err error) Fault {
	switch ExitCode(err) {
	case ExitCodeMemPanic:
		return FaultInvalidRelease
	case ExitCodeOutOfMemory:
		return FaultOutOfMemory
	default:
		return FaultArenaOverflow
	}
}

// MetricsCollector defines an interface for collecting allocation metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus (see package prommetrics).
//
// Implementations must be safe for concurrent use.
type MetricsCollector interface {
	// RecordAlloc is called after each tracked allocation.
	RecordAlloc(size int)

	// RecordResize is called after each successful resize.
	RecordResize(oldSize, newSize int)

	// RecordFree is called after each release.
	RecordFree(size int)

	// RecordFault is called on a fatal fault, before the process exits.
	RecordFault(kind Fault)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAlloc(int)       {}
func (NoopMetricsCollector) RecordResize(int, int) {}
func (NoopMetricsCollector) RecordFree(int)        {}
func (NoopMetricsCollector) RecordFault(Fault)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocCount          atomic.Int64
	AllocBytes          atomic.Int64
	ResizeCount         atomic.Int64
	FreeCount           atomic.Int64
	FreeBytes           atomic.Int64
	LiveBytes           atomic.Int64
	PeakBytes           atomic.Int64
	OutOfMemoryFaults   atomic.Int64
	InvalidFreeFaults   atomic.Int64
	ArenaOverflowFaults atomic.Int64
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(size int) {
	b.AllocCount.Add(1)
	b.AllocBytes.Add(int64(size))
	b.addLive(int64(size))
}

// RecordResize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResize(oldSize, newSize int) {
	b.ResizeCount.Add(1)
	b.addLive(int64(newSize - oldSize))
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(size int) {
	b.FreeCount.Add(1)
	b.FreeBytes.Add(int64(size))
	b.addLive(-int64(size))
}

// RecordFault implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFault(kind Fault) {
	switch kind {
	case FaultOutOfMemory:
		b.OutOfMemoryFaults.Add(1)
	case FaultInvalidRelease:
		b.InvalidFreeFaults.Add(1)
	case FaultArenaOverflow:
		b.ArenaOverflowFaults.Add(1)
	}
}

func (b *BasicMetricsCollector) addLive(delta int64) {
	live := b.LiveBytes.Add(delta)
	for {
		peak := b.PeakBytes.Load()
		if live <= peak || b.PeakBytes.CompareAndSwap(peak, live) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocCount:          b.AllocCount.Load(),
		AllocBytes:          b.AllocBytes.Load(),
		ResizeCount:         b.ResizeCount.Load(),
		FreeCount:           b.FreeCount.Load(),
		FreeBytes:           b.FreeBytes.Load(),
		LiveBytes:           b.LiveBytes.Load(),
		PeakBytes:           b.PeakBytes.Load(),
		OutOfMemoryFaults:   b.OutOfMemoryFaults.Load(),
		InvalidFreeFaults:   b.InvalidFreeFaults.Load(),
		ArenaOverflowFaults: b.ArenaOverflowFaults.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocCount          int64
	AllocBytes          int64
	ResizeCount         int64
	FreeCount           int64
	FreeBytes           int64
	LiveBytes           int64
	PeakBytes           int64
	OutOfMemoryFaults   int64
	InvalidFreeFaults   int64
	ArenaOverflowFaults int64
}
