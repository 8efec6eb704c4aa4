// Package resource implements the Controller for global limits.
//
// The Controller provides centralized management of two resource types:
//
//   - Memory: Track and limit bytes handed out by a system allocator (non-blocking, fail-fast)
//   - Trace: Rate-limit per-allocation trace events so debug logging cannot flood output
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(1024*1024); err != nil {
//	    // ErrMemoryLimitExceeded - the allocator reports out of memory
//	}
//	defer rc.ReleaseMemory(1024*1024)
//
// # Trace Rate Limiting
//
// Token bucket limiter consulted before each trace event:
//
//	rc := resource.NewController(resource.Config{TraceEventsPerSec: 1000})
//	if rc.AllowTrace() {
//	    logger.Debug(...)
//	}
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
