package domain

import "time"

// Cover is a row in the primary content store: fan uploads and mirrored
// official artwork alike. Mirrored rows carry the "official" tag and an
// empty fingerprint (their bytes never pass through the upload guard).
type Cover struct {
	ID       string   `json:"id"`
	PublicID int64    `json:"public_id"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Year     int      `json:"year,omitempty"`
	ImageURL string   `json:"image_url"`
	Tags     []string `json:"tags"`

	// Fingerprint is the 16-hex-char average hash of the uploaded image.
	// Immutable once the upload is accepted.
	Fingerprint string `json:"fingerprint,omitempty"`
	// BlurHash is the placeholder hash shown while the image loads.
	BlurHash string `json:"blur_hash,omitempty"`

	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// HasTag reports whether the cover carries the given tag.
func (c *Cover) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
