package domain

import "time"

// MergeRecord captures one catalog entry's artist name before a merge,
// keyed by artwork URL (stable across the rename).
type MergeRecord struct {
	ArtworkURL string `json:"artwork_url"`
	ArtistName string `json:"artist_name"`
}

// MergeSnapshot is the pre-merge state captured by a bulk artist merge.
// It is consumed at most once by an undo; after ExpiresAt the merge is
// permanent and the snapshot is discarded. The expiry is server-enforced,
// so losing client state can neither stretch nor shrink the undo window.
type MergeSnapshot struct {
	ID             string        `json:"id"`
	CanonicalName  string        `json:"canonical_name"`
	Records        []MergeRecord `json:"records"`
	AliasesCreated []string      `json:"aliases_created"`
	AliasesChanged []ArtistAlias `json:"aliases_changed"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
}
