package memdebug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdebug/testutil"
)

func TestGlobal_NotInitialized(t *testing.T) {
	assert.Equal(t, ErrNotInitialized, testutil.Recover(func() { Malloc(1) }))
	assert.Equal(t, ErrNotInitialized, testutil.Recover(func() { NumAllocs() }))
	assert.Equal(t, ErrNotInitialized, testutil.Recover(func() { _ = Default() }))
	assert.ErrorIs(t, Shutdown(), ErrNotInitialized)
}

func TestGlobal_Lifecycle(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(WithOutput(&out), WithColor(false)))
	t.Cleanup(func() { _ = Shutdown() })

	assert.ErrorIs(t, Init(), ErrAlreadyInitialized)

	b := Malloc(8)
	require.Len(t, b, 8)
	b = Realloc(b, 24)
	require.Len(t, b, 24)

	if Enabled {
		assert.Equal(t, 1, NumAllocs())
	}

	PrintHeap()
	if Enabled {
		assert.Contains(t, out.String(), "1 pointer has been allocated totalling 24 bytes")
	}

	Free(b)
	assert.Equal(t, 0, NumAllocs())

	require.NoError(t, Shutdown())
	assert.ErrorIs(t, Shutdown(), ErrNotInitialized)
	require.NoError(t, Init())
}
