package itunes

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

var (
	// thumbHostPattern matches the mzstatic thumbnail CDN prefix.
	thumbHostPattern = regexp.MustCompile(`^https://is\d+-ssl\.mzstatic\.com/image/(?:thumb/)?`)
	// sizeSuffixPattern matches trailing size segments like "/100x100bb.jpg".
	sizeSuffixPattern = regexp.MustCompile(`/\d+x\d+[^/]*\.(?:jpg|jpeg|webp|png|tif)$`)
)

// FullResURL derives the full-resolution artwork URL from a thumbnail URL
// by moving it onto the raw-asset host and stripping the size segment.
// Non-mzstatic URLs pass through unchanged; an empty input stays empty.
func FullResURL(url string) string {
	if url == "" || !strings.Contains(url, "mzstatic.com") {
		return url
	}
	out := thumbHostPattern.ReplaceAllString(url, "https://a1.mzstatic.com/r40/")
	return sizeSuffixPattern.ReplaceAllString(out, "")
}

// probeReadLimit is how much of the image we fetch for header parsing.
// 32KB comfortably covers JPEG metadata preceding the SOF marker.
const probeReadLimit = 32 * 1024

// ProbeDimensions fetches an artwork's pixel dimensions by reading only its
// header bytes via an HTTP Range request. Callers bound the probe with a
// context timeout; any failure is theirs to degrade on.
func ProbeDimensions(ctx context.Context, httpClient *http.Client, url string) (width, height int, err error) {
	if url == "" {
		return 0, 0, fmt.Errorf("empty URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", probeReadLimit-1))

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch image header: %w", err)
	}
	defer resp.Body.Close()

	// Servers that ignore Range reply 200 with the full body; both are fine.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, probeReadLimit))
	if err != nil {
		return 0, 0, fmt.Errorf("read image header: %w", err)
	}
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("empty response body (status %d)", resp.StatusCode)
	}

	if w, h, ok := jpegDimensions(data); ok {
		return w, h, nil
	}
	if w, h, ok := pngDimensions(data); ok {
		return w, h, nil
	}

	return 0, 0, fmt.Errorf("could not determine image dimensions from %d bytes", len(data))
}

// jpegDimensions extracts dimensions from a JPEG header by scanning for the
// first SOF0/SOF1/SOF2 marker.
func jpegDimensions(data []byte) (width, height int, ok bool) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0, false
	}

	i := 2
	for i < len(data)-1 {
		if data[i] != 0xFF {
			i++
			continue
		}

		marker := data[i+1]
		switch {
		case marker == 0xFF:
			// Fill byte before a marker.
			i++
			continue
		case marker == 0x00 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD9):
			// Stuffed bytes and standalone markers carry no length payload.
			i += 2
			continue
		case marker == 0xC0 || marker == 0xC1 || marker == 0xC2:
			// SOF segment: length(2) + precision(1) + height(2) + width(2).
			if i+9 > len(data) {
				return 0, 0, false
			}
			height = int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			width = int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			return width, height, true
		}

		if i+4 > len(data) {
			return 0, 0, false
		}
		segmentLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		i += 2 + segmentLen
	}

	return 0, 0, false
}

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// pngDimensions reads width and height from a PNG IHDR chunk.
func pngDimensions(data []byte) (width, height int, ok bool) {
	if len(data) < 24 || !bytes.Equal(data[:8], pngSignature) {
		return 0, 0, false
	}
	if string(data[12:16]) != "IHDR" {
		return 0, 0, false
	}

	width = int(binary.BigEndian.Uint32(data[16:20]))
	height = int(binary.BigEndian.Uint32(data[20:24]))
	return width, height, true
}
