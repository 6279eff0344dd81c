package itunes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullResURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "thumb host and size suffix",
			input: "https://is1-ssl.mzstatic.com/image/thumb/Music/v4/ab/cd/artwork/100x100bb.jpg",
			want:  "https://a1.mzstatic.com/r40/Music/v4/ab/cd/artwork",
		},
		{
			name:  "no thumb segment",
			input: "https://is5-ssl.mzstatic.com/image/Music/v4/ab/cd/artwork/600x600bb.webp",
			want:  "https://a1.mzstatic.com/r40/Music/v4/ab/cd/artwork",
		},
		{
			name:  "non-mzstatic passes through",
			input: "https://example.com/art/100x100.jpg",
			want:  "https://example.com/art/100x100.jpg",
		},
		{
			name:  "empty stays empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullResURL(tt.input))
		})
	}
}

// jpegHeader builds the minimal prefix ProbeDimensions needs: SOI followed
// by a SOF0 marker carrying the dimensions.
func jpegHeader(width, height int) []byte {
	return []byte{
		0xFF, 0xD8,
		0xFF, 0xC0, 0x00, 0x11, 0x08,
		byte(height >> 8), byte(height),
		byte(width >> 8), byte(width),
	}
}

// pngHeader builds a PNG signature plus IHDR chunk prefix.
func pngHeader(width, height int) []byte {
	data := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	data = append(data, 0x00, 0x00, 0x00, 0x0D)
	data = append(data, 'I', 'H', 'D', 'R')
	data = append(data,
		byte(width>>24), byte(width>>16), byte(width>>8), byte(width),
		byte(height>>24), byte(height>>16), byte(height>>8), byte(height),
	)
	return data
}

func TestProbeDimensions_JPEG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Range"), "probe must request a byte range")
		w.WriteHeader(http.StatusPartialContent)
		w.Write(jpegHeader(3000, 2000))
	}))
	defer srv.Close()

	w, h, err := ProbeDimensions(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 3000, w)
	assert.Equal(t, 2000, h)
}

func TestJPEGDimensions_SkipsStandaloneMarkers(t *testing.T) {
	// Fill bytes and a restart marker precede the SOF segment; neither
	// carries a length payload, so the scanner must step over them instead
	// of reading garbage segment lengths.
	data := []byte{
		0xFF, 0xD8,
		0xFF, 0xFF,
		0xFF, 0xD1,
		0xFF, 0xC0, 0x00, 0x11, 0x08,
		0x07, 0xD0, // height 2000
		0x0B, 0xB8, // width 3000
	}

	w, h, ok := jpegDimensions(data)
	require.True(t, ok)
	assert.Equal(t, 3000, w)
	assert.Equal(t, 2000, h)
}

func TestProbeDimensions_PNG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Full 200 response; servers may ignore the range request.
		w.Write(pngHeader(640, 480))
	}))
	defer srv.Close()

	w, h, err := ProbeDimensions(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestProbeDimensions_Unparseable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("definitely not an image"))
	}))
	defer srv.Close()

	_, _, err := ProbeDimensions(context.Background(), srv.Client(), srv.URL)
	assert.Error(t, err)
}

func TestProbeDimensions_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := ProbeDimensions(ctx, srv.Client(), srv.URL)
	assert.Error(t, err, "the context deadline bounds the probe")
}

func TestProbeDimensions_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := ProbeDimensions(context.Background(), srv.Client(), srv.URL)
	assert.Error(t, err)
}
