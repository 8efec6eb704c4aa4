package sysalloc

import (
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdebug/internal/mem"
	"github.com/hupe1980/memdebug/internal/mmap"
	"github.com/hupe1980/memdebug/internal/record"
)

func allocators() map[string]func() Allocator {
	return map[string]func() Allocator{
		"heap":    func() Allocator { return NewHeap() },
		"offheap": func() Allocator { return NewOffHeap() },
		"mmap":    func() Allocator { return NewMmap() },
		"limited": func() Allocator { return NewLimited(NewHeap(), 1<<20) },
	}
}

func TestAllocator_AllocResizeFree(t *testing.T) {
	for name, newAlloc := range allocators() {
		t.Run(name, func(t *testing.T) {
			a := newAlloc()
			defer func() { require.NoError(t, Close(a)) }()

			b, err := a.Alloc(64)
			require.NoError(t, err)
			require.Len(t, b, 64)
			for i := range b {
				b[i] = byte(i)
			}

			b, err = a.Resize(b, 4096)
			require.NoError(t, err)
			require.Len(t, b, 4096)
			for i := range 64 {
				assert.Equal(t, byte(i), b[i])
			}

			b, err = a.Resize(b, 16)
			require.NoError(t, err)
			require.Len(t, b, 16)
			assert.Equal(t, byte(15), b[15])

			require.NoError(t, a.Free(b))
			require.NoError(t, a.Free(nil))
		})
	}
}

func TestAllocator_ZeroSizeHasDistinctAddress(t *testing.T) {
	for name, newAlloc := range allocators() {
		t.Run(name, func(t *testing.T) {
			a := newAlloc()
			defer func() { require.NoError(t, Close(a)) }()

			x, err := a.Alloc(0)
			require.NoError(t, err)
			y, err := a.Alloc(0)
			require.NoError(t, err)

			assert.Empty(t, x)
			assert.NotZero(t, record.AddrOf(x))
			assert.NotEqual(t, record.AddrOf(x), record.AddrOf(y))

			require.NoError(t, a.Free(x))
			require.NoError(t, a.Free(y))
		})
	}
}

func TestAllocator_NegativeSize(t *testing.T) {
	for name, newAlloc := range allocators() {
		t.Run(name, func(t *testing.T) {
			a := newAlloc()
			defer func() { require.NoError(t, Close(a)) }()

			_, err := a.Alloc(-1)
			assert.ErrorIs(t, err, ErrInvalidSize)
		})
	}
}

func TestAllocator_ResizeNilAllocates(t *testing.T) {
	for name, newAlloc := range allocators() {
		t.Run(name, func(t *testing.T) {
			a := newAlloc()
			defer func() { require.NoError(t, Close(a)) }()

			b, err := a.Resize(nil, 32)
			require.NoError(t, err)
			assert.Len(t, b, 32)
			require.NoError(t, a.Free(b))
		})
	}
}

func TestHeap_Aligned(t *testing.T) {
	h := NewHeap()
	for _, size := range []int{1, 7, 16, 33, 1000} {
		b, err := h.Alloc(size)
		require.NoError(t, err)
		assert.True(t, mem.IsAligned(b, mem.MaxAlign), "size %d", size)
	}
}

func TestMmap_UnknownBuffer(t *testing.T) {
	m := NewMmap()
	defer func() { require.NoError(t, m.Close()) }()

	foreign := make([]byte, 8)
	assert.ErrorIs(t, m.Free(foreign), ErrUnknownBuffer)
	_, err := m.Resize(foreign, 16)
	assert.ErrorIs(t, err, ErrUnknownBuffer)
}

func TestMmap_ResizeWithinPageKeepsAddress(t *testing.T) {
	m := NewMmap()
	defer func() { require.NoError(t, m.Close()) }()

	b, err := m.Alloc(10)
	require.NoError(t, err)
	addr := record.AddrOf(b)

	b, err = m.Resize(b, 100)
	require.NoError(t, err)
	assert.Equal(t, addr, record.AddrOf(b))
	require.NoError(t, m.Free(b))
}

func TestMmap_ShrinkReleasesTailPages(t *testing.T) {
	m := NewMmap()
	defer func() { require.NoError(t, m.Close()) }()

	ps := mmap.PageSize()
	b, err := m.Alloc(3 * ps)
	require.NoError(t, err)
	addr := record.AddrOf(b)
	b[0] = 1
	b[2*ps] = 2

	b, err = m.Resize(b, 10)
	require.NoError(t, err)
	assert.Equal(t, addr, record.AddrOf(b))
	assert.Equal(t, byte(1), b[0])

	b, err = m.Resize(b, 3*ps)
	require.NoError(t, err)
	assert.Equal(t, addr, record.AddrOf(b), "grows back in place")
	if runtime.GOOS != "windows" {
		assert.Equal(t, byte(0), b[2*ps], "released page reads as zero")
	}
	require.NoError(t, m.Free(b))
}

func TestHeap_HugeRequestIsOutOfMemory(t *testing.T) {
	h := NewHeap()

	_, err := h.Alloc(math.MaxInt - 4)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	b, err := h.Alloc(8)
	require.NoError(t, err)
	_, err = h.Resize(b, mem.MaxAlloc+1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestLimited_Budget(t *testing.T) {
	l := NewLimited(NewHeap(), 100)

	a, err := l.Alloc(60)
	require.NoError(t, err)
	assert.Equal(t, int64(60), l.Usage())

	_, err = l.Alloc(50)
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, int64(60), l.Usage())

	_, err = l.Resize(a, 101)
	require.ErrorIs(t, err, ErrOutOfMemory)

	a, err = l.Resize(a, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), l.Usage())

	a, err = l.Resize(a, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(20), l.Usage())

	require.NoError(t, l.Free(a))
	assert.Equal(t, int64(0), l.Usage())
	assert.Equal(t, int64(100), l.Limit())
}

func TestLimited_Unlimited(t *testing.T) {
	l := NewLimited(NewHeap(), 0)
	b, err := l.Alloc(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), l.Usage())
	require.NoError(t, l.Free(b))
}

func TestOffHeap_Close(t *testing.T) {
	o := NewOffHeap()
	_, err := o.Alloc(128)
	require.NoError(t, err)
	require.NoError(t, o.Close())
}
