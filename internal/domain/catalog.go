// Package domain defines the core types shared across the covers server.
package domain

import "time"

// CatalogEntry is one deduplicated official-artwork record from the external
// catalog, as cached and as returned to callers. The quality score used
// during ranking is deliberately absent: it exists only inside the
// aggregator and is never persisted nor exposed.
type CatalogEntry struct {
	ArtistName      string         `json:"artist_name"`
	AlbumTitle      string         `json:"album_title"`
	ReleaseYear     int            `json:"release_year,omitempty"`
	ArtworkURL      string         `json:"artwork_url"`
	PixelDimensions string         `json:"pixel_dimensions,omitempty"` // "3000x3000", empty when the probe failed
	Territory       string         `json:"territory"`                  // uppercase territory code, e.g. "US"
	SearchArtist    string         `json:"search_artist"`
	SearchAlbum     string         `json:"search_album,omitempty"`
	Tags            []string       `json:"tags"`
	SourcePayload   map[string]any `json:"source_payload,omitempty"`

	// CoverPublicID links to the mirrored row in the primary covers table,
	// when one exists. Populated by cross-linking, never stored here.
	CoverPublicID int64 `json:"cover_public_id,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Key identifies an entry for upsert purposes. Two fetches of the same
// artwork in the same territory always collapse onto one row.
type EntryKey struct {
	Territory  string
	ArtistName string
	AlbumTitle string
	ArtworkURL string
}

// Key returns the persistence identity of the entry.
func (e *CatalogEntry) Key() EntryKey {
	return EntryKey{
		Territory:  e.Territory,
		ArtistName: e.ArtistName,
		AlbumTitle: e.AlbumTitle,
		ArtworkURL: e.ArtworkURL,
	}
}

// TagOfficial marks catalog-sourced artwork wherever it is mirrored or
// cross-linked.
const TagOfficial = "official"
