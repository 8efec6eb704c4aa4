package sysalloc

import (
	"github.com/hupe1980/memdebug/internal/resource"
)

// Limited enforces a byte budget on top of another Allocator. Usage is
// accounted by buffer length.
type Limited struct {
	next Allocator
	rc   *resource.Controller
}

// NewLimited wraps next with a limit of limitBytes. A limit <= 0 only tracks
// usage.
func NewLimited(next Allocator, limitBytes int64) *Limited {
	return &Limited{
		next: next,
		rc:   resource.NewController(resource.Config{MemoryLimitBytes: limitBytes}),
	}
}

// Usage returns the bytes currently accounted.
func (l *Limited) Usage() int64 { return l.rc.MemoryUsage() }

// Limit returns the configured budget (0 if unlimited).
func (l *Limited) Limit() int64 { return l.rc.MemoryLimit() }

// Alloc implements Allocator.
func (l *Limited) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if err := l.rc.AcquireMemory(int64(size)); err != nil {
		return nil, ErrOutOfMemory
	}
	b, err := l.next.Alloc(size)
	if err != nil {
		l.rc.ReleaseMemory(int64(size))
		return nil, err
	}
	return b, nil
}

// Resize implements Allocator. Only growth is charged against the budget.
func (l *Limited) Resize(b []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	delta := int64(size - len(b))
	if delta > 0 {
		if err := l.rc.AcquireMemory(delta); err != nil {
			return nil, ErrOutOfMemory
		}
	}
	nb, err := l.next.Resize(b, size)
	if err != nil {
		if delta > 0 {
			l.rc.ReleaseMemory(delta)
		}
		return nil, err
	}
	if delta < 0 {
		l.rc.ReleaseMemory(-delta)
	}
	return nb, nil
}

// Free implements Allocator.
func (l *Limited) Free(b []byte) error {
	if b == nil {
		return nil
	}
	if err := l.next.Free(b); err != nil {
		return err
	}
	l.rc.ReleaseMemory(int64(len(b)))
	return nil
}

// Close closes the wrapped allocator.
func (l *Limited) Close() error {
	return Close(l.next)
}
