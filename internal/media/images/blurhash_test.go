package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 200, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(encodeTestPNG(t, 100, 80))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	again, err := ComputeBlurHash(encodeTestPNG(t, 100, 80))
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}

func TestComputeBlurHash_RejectsGarbage(t *testing.T) {
	_, err := ComputeBlurHash([]byte("nope"))
	assert.Error(t, err)
}

func TestDimensions(t *testing.T) {
	w, h, err := Dimensions(encodeTestPNG(t, 123, 45))
	require.NoError(t, err)
	assert.Equal(t, 123, w)
	assert.Equal(t, 45, h)

	_, _, err = Dimensions([]byte("nope"))
	assert.Error(t, err)
}
