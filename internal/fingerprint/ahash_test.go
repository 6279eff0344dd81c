package fingerprint

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientImage paints a horizontal brightness ramp: the left half ends up
// below the mean, the right half above it.
func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// invertedGradientImage is the mirror ramp.
func invertedGradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255 - x*255/(w-1))
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompute_Deterministic(t *testing.T) {
	data := encodePNG(t, gradientImage(256, 256))

	first, err := Compute(data)
	require.NoError(t, err)
	second, err := Compute(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 16, "fingerprint is 64 bits as 16 hex chars")
	assert.Regexp(t, "^[0-9a-f]{16}$", first)
}

func TestCompute_StableAcrossScaling(t *testing.T) {
	big, err := Compute(encodePNG(t, gradientImage(512, 512)))
	require.NoError(t, err)
	small, err := Compute(encodePNG(t, gradientImage(64, 64)))
	require.NoError(t, err)

	dist, err := Distance(big, small)
	require.NoError(t, err)
	assert.LessOrEqual(t, dist, 4, "the same picture scaled should land within a few bits")
}

func TestCompute_DifferentImagesDiffer(t *testing.T) {
	a, err := Compute(encodePNG(t, gradientImage(128, 128)))
	require.NoError(t, err)
	b, err := Compute(encodePNG(t, invertedGradientImage(128, 128)))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	dist, err := Distance(a, b)
	require.NoError(t, err)
	assert.Greater(t, dist, 32, "mirrored ramps flip most bits")
}

func TestCompute_RejectsGarbage(t *testing.T) {
	_, err := Compute([]byte("not an image"))
	assert.Error(t, err)
}

func TestDistance(t *testing.T) {
	dist, err := Distance("0000000000000000", "0000000000000000")
	require.NoError(t, err)
	assert.Equal(t, 0, dist)

	dist, err = Distance("0000000000000000", "ffffffffffffffff")
	require.NoError(t, err)
	assert.Equal(t, 64, dist)

	dist, err = Distance("0000000000000001", "0000000000000003")
	require.NoError(t, err)
	assert.Equal(t, 1, dist)

	_, err = Distance("zzz", "0000000000000000")
	assert.Error(t, err)
}

func TestFromImage_GradientSplitsAtMean(t *testing.T) {
	hash := FromImage(gradientImage(64, 64))

	// Half the pixels sit above the mean, so half the bits are set.
	ones := 0
	for _, c := range hash {
		switch {
		case c >= '0' && c <= '9':
			ones += popcount4(int(c - '0'))
		default:
			ones += popcount4(int(c-'a') + 10)
		}
	}
	assert.Equal(t, 32, ones)
}

func popcount4(v int) int {
	n := 0
	for v != 0 {
		n += v & 1
		v >>= 1
	}
	return n
}
