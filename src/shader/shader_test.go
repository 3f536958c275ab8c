package shader

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var module = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}

func TestLoad(t *testing.T) {
	src := NewSource(fstest.MapFS{
		"shaders/vert.spv":  {Data: module},
		"shaders/odd.spv":   {Data: module[:6]},
		"shaders/empty.spv": {Data: nil},
		"shaders/text.spv":  {Data: []byte("void main(){}...")},
	})

	code, err := src.Load("shaders/vert.spv")
	require.NoError(t, err)
	assert.Equal(t, module, code)

	code, err = src.Load("./shaders/../shaders/vert.spv")
	require.NoError(t, err)
	assert.Equal(t, module, code)

	_, err = src.Load("shaders/missing.spv")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	for _, name := range []string{"shaders/odd.spv", "shaders/empty.spv", "shaders/text.spv"} {
		_, err := src.Load(name)
		assert.ErrorIs(t, err, ErrInvalid, name)
		assert.Contains(t, err.Error(), name)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(module[:4]))
	assert.ErrorIs(t, Validate([]byte{0x07, 0x23, 0x02, 0x03}), ErrInvalid)
}
