// Package images provides image helpers for uploaded covers.
package images

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// blurhash encoding is O(pixels); a small thumbnail is plenty of signal.
const blurThumbSize = 64

// ComputeBlurHash generates a compact blurhash placeholder string for an
// encoded cover image.
func ComputeBlurHash(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	thumb := image.NewRGBA(image.Rect(0, 0, blurThumbSize, blurThumbSize))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, img.Bounds(), draw.Src, nil)

	hash, err := blurhash.Encode(4, 3, thumb)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// Dimensions returns the pixel dimensions of an encoded image.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
