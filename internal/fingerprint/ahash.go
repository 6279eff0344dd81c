// Package fingerprint computes perceptual fingerprints of cover images for
// the duplicate-upload guard. The fingerprint is an 8x8 average hash: stable
// across re-encodes and mild scaling of the same picture, while visually
// different pictures land far apart.
package fingerprint

import (
	"bytes"
	"fmt"
	"image"
	"math/bits"
	"strconv"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const hashSize = 8

// Compute returns the 16-character lowercase hex fingerprint of the encoded
// image. Identical pixels always produce identical fingerprints regardless
// of container format.
func Compute(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return FromImage(img), nil
}

// FromImage computes the average hash of a decoded image.
func FromImage(img image.Image) string {
	// Downscale to 8x8 first; the hash only cares about coarse structure.
	small := image.NewRGBA(image.Rect(0, 0, hashSize, hashSize))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var gray [hashSize * hashSize]float64
	var sum float64
	for y := 0; y < hashSize; y++ {
		for x := 0; x < hashSize; x++ {
			i := small.PixOffset(x, y)
			r := float64(small.Pix[i])
			g := float64(small.Pix[i+1])
			b := float64(small.Pix[i+2])
			lum := 0.299*r + 0.587*g + 0.114*b
			gray[y*hashSize+x] = lum
			sum += lum
		}
	}
	mean := sum / float64(hashSize*hashSize)

	var hash uint64
	for i, lum := range gray {
		if lum >= mean {
			hash |= 1 << (63 - i)
		}
	}

	return fmt.Sprintf("%016x", hash)
}

// Distance returns the Hamming distance between two fingerprints, in bits.
// Errors on malformed input rather than guessing.
func Distance(a, b string) (int, error) {
	ha, err := strconv.ParseUint(a, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", a, err)
	}
	hb, err := strconv.ParseUint(b, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", b, err)
	}
	return bits.OnesCount64(ha ^ hb), nil
}
