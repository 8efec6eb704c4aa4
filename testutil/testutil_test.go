package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNG_Sizes(t *testing.T) {
	rng := NewRNG(4711)

	sizes := rng.Sizes(64, 10)

	assert.Len(t, sizes, 64)
	for _, s := range sizes {
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 10)
	}
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.Sizes(8, 1000)
	rng.Reset()
	b := rng.Sizes(8, 1000)
	assert.Equal(t, a, b)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestExitRecorder(t *testing.T) {
	var e ExitRecorder
	_, ok := e.Last()
	assert.False(t, ok)

	e.Exit(10)
	e.Exit(11)
	code, ok := e.Last()
	assert.True(t, ok)
	assert.Equal(t, 11, code)
	assert.Equal(t, []int{10, 11}, e.Codes())
}

func TestRecover(t *testing.T) {
	assert.Nil(t, Recover(func() {}))
	assert.Equal(t, "boom", Recover(func() { panic("boom") }))
}
