package sqlite

import (
	"context"
	"database/sql"
	"github.com/go-json-experiment/json"
	"fmt"
	"time"

	"github.com/coverscafe/covers-server/internal/domain"
	"github.com/coverscafe/covers-server/internal/id"
	"github.com/coverscafe/covers-server/internal/store"
)

// coverColumns is the ordered list of columns selected in cover queries.
// Must match the scan order in scanCover.
const coverColumns = `public_id, id, created_at, title, artist, year, image_url,
	tags, fingerprint, blur_hash, is_public`

func scanCover(scanner interface{ Scan(dest ...any) error }) (*domain.Cover, error) {
	var c domain.Cover

	var (
		createdAt   string
		year        sql.NullInt64
		tagsJSON    string
		fingerprint sql.NullString
		blurHash    sql.NullString
		isPublic    int
	)

	err := scanner.Scan(
		&c.PublicID,
		&c.ID,
		&createdAt,
		&c.Title,
		&c.Artist,
		&year,
		&c.ImageURL,
		&tagsJSON,
		&fingerprint,
		&blurHash,
		&isPublic,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.Year = int(year.Int64)
	if fingerprint.Valid {
		c.Fingerprint = fingerprint.String
	}
	if blurHash.Valid {
		c.BlurHash = blurHash.String
	}
	c.Public = isPublic != 0
	if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
		return nil, fmt.Errorf("parse tags: %w", err)
	}

	return &c, nil
}

// CreateCover inserts a cover and assigns its public ID.
// Returns store.ErrAlreadyExists on a duplicate internal ID.
func (s *Store) CreateCover(ctx context.Context, c *domain.Cover) error {
	if c.ID == "" {
		c.ID = id.MustGenerate("cov")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	tagsJSON, err := json.Marshal(c.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO covers (id, created_at, title, artist, year, image_url, tags, fingerprint, blur_hash, is_public)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		formatTime(c.CreatedAt),
		c.Title,
		c.Artist,
		nullInt64(int64(c.Year)),
		c.ImageURL,
		string(tagsJSON),
		nullString(c.Fingerprint),
		nullString(c.BlurHash),
		boolToInt(c.Public),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert cover: %w", err)
	}

	c.PublicID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("cover public id: %w", err)
	}
	return nil
}

// CoverByFingerprint returns the first cover with an exactly matching
// perceptual hash, or store.ErrNotFound.
func (s *Store) CoverByFingerprint(ctx context.Context, fingerprint string) (*domain.Cover, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+coverColumns+` FROM covers WHERE fingerprint = ? LIMIT 1`, fingerprint)

	c, err := scanCover(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cover by fingerprint: %w", err)
	}
	return c, nil
}

// CoversByImageURLs returns the covers carrying the given tag whose image
// URL is in the set. Used for mirror dedup and for cross-linking catalog
// entries to their internal permalinks.
func (s *Store) CoversByImageURLs(ctx context.Context, urls []string, tag string) ([]domain.Cover, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	query := `SELECT ` + coverColumns + ` FROM covers
		WHERE image_url IN (` + placeholders(len(urls)) + `) AND is_public = 1`
	rows, err := s.db.QueryContext(ctx, query, stringsToAny(urls)...)
	if err != nil {
		return nil, fmt.Errorf("covers by image urls: %w", err)
	}
	defer rows.Close()

	var covers []domain.Cover
	for rows.Next() {
		c, err := scanCover(rows)
		if err != nil {
			return nil, err
		}
		if tag != "" && !c.HasTag(tag) {
			continue
		}
		covers = append(covers, *c)
	}
	return covers, rows.Err()
}

// MirrorEntries copies catalog entries into the covers table so they can be
// deep-linked. Entries whose artwork URL is already mirrored (same tag) are
// skipped; the full mirrored set for the URLs is returned either way.
func (s *Store) MirrorEntries(ctx context.Context, entries []domain.CatalogEntry) ([]domain.Cover, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	urlSet := make(map[string]bool, len(entries))
	urls := make([]string, 0, len(entries))
	for i := range entries {
		u := entries[i].ArtworkURL
		if u == "" || urlSet[u] {
			continue
		}
		urlSet[u] = true
		urls = append(urls, u)
	}

	existing, err := s.CoversByImageURLs(ctx, urls, domain.TagOfficial)
	if err != nil {
		return nil, err
	}
	existingSet := make(map[string]bool, len(existing))
	for i := range existing {
		existingSet[existing[i].ImageURL] = true
	}

	for i := range entries {
		e := &entries[i]
		if e.ArtworkURL == "" || existingSet[e.ArtworkURL] {
			continue
		}
		existingSet[e.ArtworkURL] = true

		cover := domain.Cover{
			Title:    orDefault(e.AlbumTitle, "Unknown album"),
			Artist:   orDefault(e.ArtistName, "Unknown artist"),
			Year:     e.ReleaseYear,
			ImageURL: e.ArtworkURL,
			Tags:     []string{domain.TagOfficial},
			Public:   true,
		}
		if err := s.CreateCover(ctx, &cover); err != nil {
			return nil, fmt.Errorf("mirror %s: %w", e.ArtworkURL, err)
		}
	}

	return s.CoversByImageURLs(ctx, urls, domain.TagOfficial)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
