package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	File  string `json:"file"`
	Line  int    `json:"line"`
	Sizes []int  `json:"sizes"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("gob")
	assert.False(t, ok)
}

func TestCodecs_Interoperate(t *testing.T) {
	in := sample{File: "a/b.go", Line: 7, Sizes: []int{1, 2, 3}}

	data := MustMarshal(JSON{}, in)

	var out sample
	require.NoError(t, GoJSON{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMustMarshal_DefaultCodec(t *testing.T) {
	assert.Equal(t, `{"file":"x","line":1,"sizes":null}`, string(MustMarshal(nil, sample{File: "x", Line: 1})))
	assert.Panics(t, func() { MustMarshal(JSON{}, func() {}) })
}
