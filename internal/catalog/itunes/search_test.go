package itunes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

const searchFixture = `{
	"resultCount": 3,
	"results": [
		{
			"wrapperType": "collection",
			"collectionType": "Album",
			"collectionName": "Untrue",
			"artistName": "Burial",
			"releaseDate": "2007-11-05T08:00:00Z",
			"artworkUrl100": "https://is1-ssl.mzstatic.com/image/thumb/Music/ab/cd/untrue/100x100bb.jpg",
			"collectionId": 268971197
		},
		{
			"wrapperType": "collection",
			"collectionType": "Album",
			"collectionName": "Street Halo - EP",
			"artistName": "Burial",
			"releaseDate": "2011-03-28T07:00:00Z",
			"artworkUrl60": "https://is2-ssl.mzstatic.com/image/thumb/Music/ef/gh/halo/60x60bb.jpg"
		},
		{
			"wrapperType": "collection",
			"collectionType": "Album",
			"collectionName": "No Artwork",
			"artistName": "Burial",
			"releaseDate": "2012-01-01T08:00:00Z"
		}
	]
}`

func TestSearchAlbums(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, defaultBaseURL,
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "Burial Untrue", q.Get("term"))
			assert.Equal(t, "album", q.Get("entity"))
			assert.Equal(t, "us", q.Get("country"))
			assert.Equal(t, "40", q.Get("limit"))
			return httpmock.NewStringResponse(http.StatusOK, searchFixture), nil
		})

	candidates, err := client.SearchAlbums(context.Background(), "Burial", "Untrue", "US", 40)
	require.NoError(t, err)
	require.Len(t, candidates, 2, "hits without artwork are dropped")

	first := candidates[0]
	assert.Equal(t, "Burial", first.ArtistName)
	assert.Equal(t, "Untrue", first.AlbumTitle)
	assert.Equal(t, 2007, first.ReleaseYear)
	assert.Equal(t, "US", first.Territory)
	assert.Equal(t, "https://a1.mzstatic.com/r40/Music/ab/cd/untrue", first.ArtworkURL,
		"artwork URL arrives already rewritten to full resolution")
	assert.EqualValues(t, 268971197, first.Payload["collectionId"],
		"the raw hit travels with the candidate")

	second := candidates[1]
	assert.Equal(t, "https://a1.mzstatic.com/r40/Music/ef/gh/halo", second.ArtworkURL,
		"artworkUrl60 is the fallback when 100 is missing")
	assert.Equal(t, 2011, second.ReleaseYear)
}

func TestSearchAlbums_ServerError(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, defaultBaseURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	_, err := client.SearchAlbums(context.Background(), "Burial", "", "US", 40)
	assert.Error(t, err)
}

func TestSearchAlbums_MalformedBody(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, defaultBaseURL,
		httpmock.NewStringResponder(http.StatusOK, "<html>not json</html>"))

	_, err := client.SearchAlbums(context.Background(), "Burial", "", "US", 40)
	assert.Error(t, err)
}

func TestReleaseYear(t *testing.T) {
	assert.Equal(t, 2007, releaseYear("2007-11-05T08:00:00Z"))
	assert.Equal(t, 0, releaseYear(""))
	assert.Equal(t, 0, releaseYear("n/a"))
}
