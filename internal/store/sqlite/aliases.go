package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/coverscafe/covers-server/internal/domain"
	"github.com/coverscafe/covers-server/internal/store"
)

// AliasMap loads the full alias → canonical mapping. The resolver takes
// this as an explicit argument, so each request works against one
// consistent view of the table.
func (s *Store) AliasMap(ctx context.Context) (domain.AliasMap, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT alias, canonical FROM artist_aliases`)
	if err != nil {
		return nil, fmt.Errorf("select aliases: %w", err)
	}
	defer rows.Close()

	m := make(domain.AliasMap)
	for rows.Next() {
		var alias, canonical string
		if err := rows.Scan(&alias, &canonical); err != nil {
			return nil, err
		}
		m[alias] = canonical
	}
	return m, rows.Err()
}

// AliasesFor returns every alias mapping to the given canonical name.
func (s *Store) AliasesFor(ctx context.Context, canonical string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT alias FROM artist_aliases WHERE canonical = ? ORDER BY alias`, canonical)
	if err != nil {
		return nil, fmt.Errorf("select aliases for %q: %w", canonical, err)
	}
	defer rows.Close()

	var aliases []string
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, err
		}
		aliases = append(aliases, alias)
	}
	return aliases, rows.Err()
}

// CreateAlias inserts a single alias row.
// Returns store.ErrAlreadyExists when the alias is already taken.
func (s *Store) CreateAlias(ctx context.Context, alias domain.ArtistAlias) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artist_aliases (alias, canonical, created_at) VALUES (?, ?, ?)`,
		alias.Alias, alias.Canonical, formatTime(time.Now()))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}
