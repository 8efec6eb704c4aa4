package memdebug

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/hupe1980/memdebug/internal/registry"
	"github.com/hupe1980/memdebug/sysalloc"
)

type options struct {
	tableSize        int
	allocator        sysalloc.Allocator
	memoryLimit      int64
	out              io.Writer
	color            *bool
	metricsCollector MetricsCollector
	logger           *Logger
	traceRate        int
	traceBurst       int
	exit             func(code int)
}

// Option configures a Debugger.
type Option func(*options)

// WithTableSize sets the number of registry buckets.
// If n <= 0, registry.DefaultTableSize is used.
func WithTableSize(n int) Option {
	return func(o *options) {
		o.tableSize = n
	}
}

// WithAllocator sets the system allocator raw memory comes from.
// If nil is passed, sysalloc.Heap is used.
//
// Example with off-heap memory:
//
//	d := memdebug.New(memdebug.WithAllocator(sysalloc.NewOffHeap()))
//	defer d.Close()
func WithAllocator(a sysalloc.Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithMemoryLimit caps the bytes the system allocator may hand out. Requests
// beyond the cap take the out-of-memory path.
// If limit <= 0, no cap is enforced.
func WithMemoryLimit(limit int64) Option {
	return func(o *options) {
		o.memoryLimit = limit
	}
}

// WithOutput sets where heap dumps and fault diagnostics are written.
// Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithColor forces ANSI colours on or off. By default colours are used when
// the output is a terminal.
func WithColor(enabled bool) Option {
	return func(o *options) {
		o.color = &enabled
	}
}

// WithMetricsCollector configures a metrics collector for monitoring allocations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &memdebug.BasicMetricsCollector{}
//	d := memdebug.New(memdebug.WithMetricsCollector(metrics))
//	// ... use d ...
//	stats := metrics.GetStats()
//	fmt.Printf("Allocs: %d, Peak: %d bytes\n", stats.AllocCount, stats.PeakBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging. Allocation tracing is emitted at
// debug level, faults at error level.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := memdebug.NewJSONLogger(slog.LevelDebug)
//	d := memdebug.New(memdebug.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithTraceRate limits allocation trace events to perSec per second with the
// given burst. If perSec <= 0, tracing is not throttled.
func WithTraceRate(perSec, burst int) Option {
	return func(o *options) {
		o.traceRate = perSec
		o.traceBurst = burst
	}
}

// WithExitFunc replaces os.Exit on fatal paths. If fn returns, the faulting
// goroutine panics with the fatal error instead of continuing.
func WithExitFunc(fn func(code int)) Option {
	return func(o *options) {
		o.exit = fn
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		tableSize:        registry.DefaultTableSize,
		out:              os.Stdout,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		exit:             os.Exit,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.allocator == nil {
		o.allocator = sysalloc.NewHeap()
	}
	if o.memoryLimit > 0 {
		o.allocator = sysalloc.NewLimited(o.allocator, o.memoryLimit)
	}
	if o.out == nil {
		o.out = io.Discard
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.exit == nil {
		o.exit = os.Exit
	}
	return o
}

func (o *options) useColor() bool {
	if o.color != nil {
		return *o.color
	}
	f, ok := o.out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
