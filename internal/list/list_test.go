package list

import (
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_AppendGrowth(t *testing.T) {
	l := New[int](0)
	assert.Equal(t, 0, l.Cap())

	l.Append(1)
	assert.Equal(t, 16, l.Cap())

	for i := 2; i <= 17; i++ {
		l.Append(i)
	}
	assert.Equal(t, 17, l.Len())
	assert.Equal(t, 16*3/2+16, l.Cap())
	assert.Equal(t, 17, l.At(16))
}

func TestList_AppendAll(t *testing.T) {
	a := Of(1, 2)
	b := Of(3, 4, 5)
	a.AppendAll(b)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, a.Slice())
	assert.Equal(t, 3, b.Len(), "source is not consumed")
}

func TestList_PeekPop(t *testing.T) {
	l := Of("a", "b")
	assert.Equal(t, "b", *l.Peek())
	l.Pop()
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "a", *l.Peek())
}

func TestList_Values(t *testing.T) {
	l := Of(3, 1, 2)
	assert.Equal(t, []int{3, 1, 2}, slices.Collect(l.Values()))

	var first []int
	for v := range l.Values() {
		first = append(first, v)
		break
	}
	assert.Equal(t, []int{3}, first)
}

func TestList_Clone(t *testing.T) {
	l := Of(1, 2, 3)
	c := l.Clone()
	c.Append(4)
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 4, c.Len())
}

func TestList_UseAfterDestroy(t *testing.T) {
	l := Of(1)
	l.Destroy()
	assert.True(t, l.Destroyed())
	assert.PanicsWithValue(t, "list: use after Destroy()", func() { l.Append(2) })
	assert.Panics(t, func() { _ = l.Len() })
}

func TestMap_ConsumesInput(t *testing.T) {
	l := Of(1, 2, 3)
	out := Map(l, strconv.Itoa)

	assert.Equal(t, []string{"1", "2", "3"}, out.Slice())
	assert.True(t, l.Destroyed())
}

func TestFilter_ReusesStorage(t *testing.T) {
	l := New[int](8)
	for i := 0; i < 6; i++ {
		l.Append(i)
	}
	before := &l.Slice()[0]

	out := Filter(l, func(v int) bool { return v%2 == 0 })

	require.Equal(t, []int{0, 2, 4}, out.Slice())
	assert.Same(t, before, &out.Slice()[0])
	assert.True(t, l.Destroyed())
}

func TestFlatMap(t *testing.T) {
	l := Of(1, 2, 3)
	out := FlatMap(l, func(v int) *List[int] {
		p := New[int](v)
		for i := 0; i < v; i++ {
			p.Append(v)
		}
		return p
	})

	assert.Equal(t, []int{1, 2, 2, 3, 3, 3}, out.Slice())
	assert.True(t, l.Destroyed())
}

func TestForEach(t *testing.T) {
	l := Of(1, 2, 3)
	sum := 0
	ForEach(l, func(v int) { sum += v })
	assert.Equal(t, 6, sum)
	assert.True(t, l.Destroyed())
}
