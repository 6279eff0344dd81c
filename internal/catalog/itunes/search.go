package itunes

import (
	"context"
	"github.com/go-json-experiment/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// SearchAlbums queries one territory of the iTunes catalog for albums
// matching the artist (and optional album) term. Hits without a resolvable
// artwork URL are dropped; surviving hits carry the derived full-resolution
// URL and the raw source payload.
func (c *Client) SearchAlbums(ctx context.Context, artist, album, territory string, limit int) ([]Candidate, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	term := strings.TrimSpace(strings.TrimSpace(artist) + " " + strings.TrimSpace(album))
	params := url.Values{}
	params.Set("term", term)
	params.Set("entity", "album")
	params.Set("country", strings.ToLower(territory))
	params.Set("limit", strconv.Itoa(limit))

	searchURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("searching catalog",
		"term", term,
		"territory", territory,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Parse twice: once into typed fields, once into raw maps so the
	// untouched hit can travel with the candidate into the cache.
	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	var rawResp rawSearchResponse
	if err := json.Unmarshal(body, &rawResp); err != nil {
		return nil, fmt.Errorf("parse raw response: %w", err)
	}

	c.logger.Debug("catalog search results",
		"territory", territory,
		"count", searchResp.ResultCount,
	)

	code := strings.ToUpper(territory)
	candidates := make([]Candidate, 0, len(searchResp.Results))
	for i := range searchResp.Results {
		r := &searchResp.Results[i]

		artworkURL := r.ArtworkURL100
		if artworkURL == "" {
			artworkURL = r.ArtworkURL60
		}
		fullRes := FullResURL(artworkURL)
		if fullRes == "" {
			continue
		}

		candidate := Candidate{
			ArtistName:  r.ArtistName,
			AlbumTitle:  r.CollectionName,
			ReleaseYear: releaseYear(r.ReleaseDate),
			ArtworkURL:  fullRes,
			Territory:   code,
		}
		if i < len(rawResp.Results) {
			candidate.Payload = rawResp.Results[i]
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// releaseYear extracts the year from an ISO release date ("2012-10-22T...").
// Returns 0 when absent or malformed.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
