// Package itunes provides a territory-aware client for the iTunes Search API
// album catalog.
package itunes

// Candidate is one normalized raw hit from a territory query, before
// deduplication and ranking.
type Candidate struct {
	ArtistName  string
	AlbumTitle  string
	ReleaseYear int
	// ArtworkURL is the derived full-resolution URL, never the thumbnail.
	ArtworkURL string
	// Territory is the uppercase territory code the hit came from.
	Territory string
	// Payload is the raw source hit, retained for the cache.
	Payload map[string]any
}

// searchResponse is the raw iTunes API response.
type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []searchResult `json:"results"`
}

// searchResult is a single album hit from iTunes search.
type searchResult struct {
	WrapperType    string `json:"wrapperType"`
	CollectionType string `json:"collectionType"`
	CollectionName string `json:"collectionName"`
	ArtistName     string `json:"artistName"`
	ReleaseDate    string `json:"releaseDate"`
	ArtworkURL60   string `json:"artworkUrl60"`
	ArtworkURL100  string `json:"artworkUrl100"`
}

// rawSearchResponse mirrors searchResponse but keeps each hit as an untyped
// map so the full source payload can be cached alongside the parsed fields.
type rawSearchResponse struct {
	Results []map[string]any `json:"results"`
}
