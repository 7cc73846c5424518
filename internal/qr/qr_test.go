package qr

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestPNG(t *testing.T) {
	png, err := PNG([]byte(`{"version":3,"encrypted":"abcd"}`), 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngHeader))
}

func TestPNGErrors(t *testing.T) {
	_, err := PNG(nil, 256)
	assert.Error(t, err)

	_, err = PNG([]byte(strings.Repeat("a", MaxContentLen+1)), 256)
	assert.ErrorIs(t, err, ErrTooLarge)
}
