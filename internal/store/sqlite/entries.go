package sqlite

import (
	"context"
	"database/sql"
	"github.com/go-json-experiment/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/coverscafe/covers-server/internal/domain"
)

// entryColumns is the ordered list of columns selected in catalog entry
// queries. Must match the scan order in scanEntry.
const entryColumns = `created_at, territory, artist_name, album_title, release_year,
	artwork_url, pixel_dimensions, search_artist, search_album, tags, source_payload`

// scanEntry scans a sql.Row (or sql.Rows via its Scan method) into a domain.CatalogEntry.
func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.CatalogEntry, error) {
	var e domain.CatalogEntry

	var (
		createdAt     string
		releaseYear   sql.NullInt64
		pixelDims     sql.NullString
		searchAlbum   sql.NullString
		tagsJSON      string
		sourcePayload sql.NullString
	)

	err := scanner.Scan(
		&createdAt,
		&e.Territory,
		&e.ArtistName,
		&e.AlbumTitle,
		&releaseYear,
		&e.ArtworkURL,
		&pixelDims,
		&e.SearchArtist,
		&searchAlbum,
		&tagsJSON,
		&sourcePayload,
	)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.ReleaseYear = int(releaseYear.Int64)
	if pixelDims.Valid {
		e.PixelDimensions = pixelDims.String
	}
	if searchAlbum.Valid {
		e.SearchAlbum = searchAlbum.String
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return nil, fmt.Errorf("parse tags: %w", err)
	}
	if sourcePayload.Valid && sourcePayload.String != "" {
		if err := json.Unmarshal([]byte(sourcePayload.String), &e.SourcePayload); err != nil {
			return nil, fmt.Errorf("parse source payload: %w", err)
		}
	}

	return &e, nil
}

// UpsertEntries writes aggregated entries into the catalog cache in one
// transaction. Conflicts on (territory, artist_name, album_title,
// artwork_url) refresh the mutable columns, so repeated searches converge
// on one row per identity.
func (s *Store) UpsertEntries(ctx context.Context, entries []domain.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_entries (
			created_at, updated_at, territory, artist_name, album_title, release_year,
			artwork_url, pixel_dimensions, search_artist, search_album, tags, source_payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (territory, artist_name, album_title, artwork_url) DO UPDATE SET
			updated_at = excluded.updated_at,
			release_year = excluded.release_year,
			pixel_dimensions = excluded.pixel_dimensions,
			search_artist = excluded.search_artist,
			search_album = excluded.search_album,
			tags = excluded.tags,
			source_payload = excluded.source_payload`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for i := range entries {
		e := &entries[i]

		tagsJSON, err := json.Marshal(e.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		var payloadJSON []byte
		if e.SourcePayload != nil {
			payloadJSON, err = json.Marshal(e.SourcePayload)
			if err != nil {
				return fmt.Errorf("marshal source payload: %w", err)
			}
		}

		_, err = stmt.ExecContext(ctx,
			now,
			now,
			e.Territory,
			e.ArtistName,
			e.AlbumTitle,
			nullInt64(int64(e.ReleaseYear)),
			e.ArtworkURL,
			nullString(e.PixelDimensions),
			e.SearchArtist,
			nullString(e.SearchAlbum),
			string(tagsJSON),
			nullString(string(payloadJSON)),
		)
		if err != nil {
			return fmt.Errorf("upsert entry %s/%s: %w", e.Territory, e.ArtworkURL, err)
		}
	}

	return tx.Commit()
}

// SearchEntries returns cached entries whose search artist matches any of
// the given artist terms (alias-expanded by the caller), optionally
// narrowed by album. Ordering mirrors the aggregator's display order so a
// cache re-read never reshuffles the view.
func (s *Store) SearchEntries(ctx context.Context, artistTerms []string, album string, limit int) ([]domain.CatalogEntry, error) {
	if len(artistTerms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 200
	}

	query := `SELECT ` + entryColumns + ` FROM catalog_entries WHERE (`
	args := make([]any, 0, len(artistTerms)+2)
	for i, term := range artistTerms {
		if i > 0 {
			query += ` OR `
		}
		query += `search_artist LIKE ? ESCAPE '\' OR artist_name LIKE ? ESCAPE '\'`
		pattern := "%" + escapeLike(term) + "%"
		args = append(args, pattern, pattern)
	}
	query += `)`
	if album != "" {
		query += ` AND search_album LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(album)+"%")
	}
	query += ` ORDER BY release_year DESC, album_title ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// escapeLike escapes LIKE wildcards so user-supplied terms match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// EntriesByArtists returns the (artwork_url, artist_name) pairs for every
// cached entry credited to one of the given artist names. Used to capture
// the pre-merge snapshot.
func (s *Store) EntriesByArtists(ctx context.Context, names []string) ([]domain.MergeRecord, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := `SELECT DISTINCT artwork_url, artist_name FROM catalog_entries
		WHERE artist_name IN (` + placeholders(len(names)) + `)`
	rows, err := s.db.QueryContext(ctx, query, stringsToAny(names)...)
	if err != nil {
		return nil, fmt.Errorf("select entries by artists: %w", err)
	}
	defer rows.Close()

	var records []domain.MergeRecord
	for rows.Next() {
		var r domain.MergeRecord
		if err := rows.Scan(&r.ArtworkURL, &r.ArtistName); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// MergeArtists atomically renames every cached entry credited to one of the
// input names to the canonical name and records alias rows for the
// non-canonical inputs. Inputs that are already aliases are resolved to
// their canonical first, and every alias pointing at a name that just became
// an alias is re-pointed, so resolution always stays one hop.
//
// Returns the aliases this merge created and the prior mapping of every
// alias row it rewrote or deleted, so an undo can restore both exactly.
func (s *Store) MergeArtists(ctx context.Context, names []string, canonical string) (created []string, changed []domain.ArtistAlias, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin merge: %w", err)
	}
	defer tx.Rollback()

	// Resolve inputs that are themselves aliases so no chain can form.
	candidates := make(map[string]bool)
	for _, name := range names {
		candidates[name] = true

		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT canonical FROM artist_aliases WHERE alias = ?`, name).Scan(&existing)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return nil, nil, fmt.Errorf("resolve alias %q: %w", name, err)
		default:
			candidates[existing] = true
		}
	}

	// merged is every name that becomes an alias of the new canonical.
	merged := make([]string, 0, len(candidates))
	for name := range candidates {
		if name != canonical {
			merged = append(merged, name)
		}
	}
	sort.Strings(merged)

	// Snapshot the alias rows this merge will rewrite or delete: rows whose
	// alias is about to be upserted, siblings pointing at a merged name, and
	// a row occupying the canonical itself.
	changed, err = selectAliases(ctx, tx, merged, canonical)
	if err != nil {
		return nil, nil, err
	}
	priorAlias := make(map[string]bool, len(changed))
	for _, a := range changed {
		priorAlias[a.Alias] = true
	}

	// Rename the cached entries.
	if _, err := tx.ExecContext(ctx,
		`UPDATE catalog_entries SET artist_name = ?, updated_at = ?
		 WHERE artist_name IN (`+placeholders(len(names))+`)`,
		append([]any{canonical, formatTime(time.Now())}, stringsToAny(names)...)...,
	); err != nil {
		return nil, nil, fmt.Errorf("rename entries: %w", err)
	}

	// Write alias rows. Upsert keeps previously-aliased inputs pointing at
	// the new canonical without tripping the uniqueness constraint.
	now := formatTime(time.Now())
	for _, name := range merged {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO artist_aliases (alias, canonical, created_at) VALUES (?, ?, ?)
			ON CONFLICT (alias) DO UPDATE SET canonical = excluded.canonical`,
			name, canonical, now,
		); err != nil {
			return nil, nil, fmt.Errorf("write alias %q: %w", name, err)
		}
		if !priorAlias[name] {
			created = append(created, name)
		}
	}

	// Aliases that pointed at any name that just became an alias would now
	// be two hops away; re-point them straight at the new canonical.
	if len(merged) > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE artist_aliases SET canonical = ?
			 WHERE canonical IN (`+placeholders(len(merged))+`) AND alias != ?`,
			append(append([]any{canonical}, stringsToAny(merged)...), canonical)...,
		); err != nil {
			return nil, nil, fmt.Errorf("repoint aliases: %w", err)
		}
	}

	// The canonical target must never remain an alias itself.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM artist_aliases WHERE alias = ?`, canonical); err != nil {
		return nil, nil, fmt.Errorf("clear canonical alias: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit merge: %w", err)
	}
	return created, changed, nil
}

// selectAliases returns the alias rows whose alias is one of the merged
// names or the canonical, or whose canonical is one of the merged names.
func selectAliases(ctx context.Context, tx *sql.Tx, merged []string, canonical string) ([]domain.ArtistAlias, error) {
	aliasSet := append(append([]string{}, merged...), canonical)
	query := `SELECT alias, canonical FROM artist_aliases
		WHERE alias IN (` + placeholders(len(aliasSet)) + `)`
	args := stringsToAny(aliasSet)
	if len(merged) > 0 {
		query += ` OR canonical IN (` + placeholders(len(merged)) + `)`
		args = append(args, stringsToAny(merged)...)
	}
	query += ` ORDER BY alias`

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot aliases: %w", err)
	}
	defer rows.Close()

	var out []domain.ArtistAlias
	for rows.Next() {
		var a domain.ArtistAlias
		if err := rows.Scan(&a.Alias, &a.Canonical); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RestoreArtistNames reverses a merge: each record's artist name is written
// back by artwork URL, exactly the aliases the merge created are removed,
// and every alias row it rewrote or deleted gets its prior mapping back.
// Runs in one transaction so a failed undo leaves the merge fully in place.
func (s *Store) RestoreArtistNames(ctx context.Context, records []domain.MergeRecord, created []string, changed []domain.ArtistAlias) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE catalog_entries SET artist_name = ?, updated_at = ? WHERE artwork_url = ?`)
	if err != nil {
		return fmt.Errorf("prepare restore: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ArtistName, now, r.ArtworkURL); err != nil {
			return fmt.Errorf("restore %s: %w", r.ArtworkURL, err)
		}
	}

	if len(created) > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM artist_aliases WHERE alias IN (`+placeholders(len(created))+`)`,
			stringsToAny(created)...,
		); err != nil {
			return fmt.Errorf("delete aliases: %w", err)
		}
	}

	for _, a := range changed {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO artist_aliases (alias, canonical, created_at) VALUES (?, ?, ?)
			ON CONFLICT (alias) DO UPDATE SET canonical = excluded.canonical`,
			a.Alias, a.Canonical, now,
		); err != nil {
			return fmt.Errorf("restore alias %q: %w", a.Alias, err)
		}
	}

	return tx.Commit()
}

// DistinctArtistNames returns every distinct artist name in the catalog
// cache, for merge-candidate suggestions.
func (s *Store) DistinctArtistNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT artist_name FROM catalog_entries ORDER BY artist_name`)
	if err != nil {
		return nil, fmt.Errorf("select distinct artists: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
