// Package service implements the application use cases on top of the store
// and the catalog aggregator.
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/coverscafe/covers-server/internal/domain"
	"github.com/coverscafe/covers-server/internal/errors"
	"github.com/coverscafe/covers-server/internal/identity"
)

// CatalogStore is the persistence surface the catalog service needs.
type CatalogStore interface {
	SearchEntries(ctx context.Context, artistTerms []string, album string, limit int) ([]domain.CatalogEntry, error)
	UpsertEntries(ctx context.Context, entries []domain.CatalogEntry) error
	AliasMap(ctx context.Context) (domain.AliasMap, error)
	CoversByImageURLs(ctx context.Context, urls []string, tag string) ([]domain.Cover, error)
	MirrorEntries(ctx context.Context, entries []domain.CatalogEntry) ([]domain.Cover, error)
}

// Searcher is the live aggregation surface. Satisfied by *catalog.Aggregator.
type Searcher interface {
	Search(ctx context.Context, artist, album string, territories []string) ([]domain.CatalogEntry, error)
}

// CatalogService serves artwork searches read-through: cached entries and a
// live refresh are fetched together, and a successful live fetch is written
// back before being served from the cache again.
type CatalogService struct {
	store  CatalogStore
	agg    Searcher
	logger *slog.Logger
}

func NewCatalogService(store CatalogStore, agg Searcher, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, agg: agg, logger: logger}
}

// Search returns ranked official artwork for the artist (optionally narrowed
// by album, optionally overriding the configured territories). Live results
// supersede the cache when present; the cache alone answers when the live
// fetch fails or finds nothing. Served entries only reflect a cache write
// that actually succeeded: on write failure the live view is returned as-is,
// never a stale re-read presented as fresh.
func (s *CatalogService) Search(ctx context.Context, artist, album string, territories []string) ([]domain.CatalogEntry, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	if artist == "" {
		return nil, errors.Validationf("artist is required")
	}

	aliases, err := s.store.AliasMap(ctx)
	if err != nil {
		// Searching under the literal name still works without the map.
		s.logger.Warn("alias map unavailable", "error", err)
		aliases = domain.AliasMap{}
	}

	primary := aliases.Resolve(artist)
	terms := identity.Expand(aliases, identity.SplitCredit(artist))

	var (
		wg       sync.WaitGroup
		cached   []domain.CatalogEntry
		cacheErr error
		live     []domain.CatalogEntry
		liveErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cached, cacheErr = s.store.SearchEntries(ctx, terms, album, 0)
	}()
	go func() {
		defer wg.Done()
		live, liveErr = s.agg.Search(ctx, primary, album, territories)
	}()
	wg.Wait()

	if liveErr != nil {
		s.logger.Warn("live catalog fetch failed, serving cache",
			"artist", primary,
			"error", liveErr,
		)
	}

	if liveErr == nil && len(live) > 0 {
		if err := s.store.UpsertEntries(ctx, live); err != nil {
			s.logger.Warn("catalog cache write failed, serving live view", "error", err)
			return s.crossLink(ctx, live), nil
		}
		refreshed, err := s.store.SearchEntries(ctx, terms, album, 0)
		if err != nil {
			s.logger.Warn("catalog cache re-read failed, serving live view", "error", err)
			return s.crossLink(ctx, live), nil
		}
		return s.crossLink(ctx, refreshed), nil
	}

	if cacheErr != nil {
		if liveErr == nil {
			// Live legitimately found nothing; empty is a valid answer.
			return s.crossLink(ctx, live), nil
		}
		return nil, errors.Wrap(cacheErr, errors.CodeInternal, "search catalog cache")
	}
	return s.crossLink(ctx, cached), nil
}

// Mirror copies catalog entries into the covers table so they gain stable
// public permalinks, skipping artwork URLs already mirrored.
func (s *CatalogService) Mirror(ctx context.Context, entries []domain.CatalogEntry) ([]domain.Cover, error) {
	if len(entries) == 0 {
		return nil, errors.Validationf("at least one entry is required")
	}
	covers, err := s.store.MirrorEntries(ctx, entries)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "mirror entries")
	}
	return covers, nil
}

// crossLink fills CoverPublicID on entries whose artwork has been mirrored.
// Linking is best-effort: a lookup failure degrades to unlinked entries.
func (s *CatalogService) crossLink(ctx context.Context, entries []domain.CatalogEntry) []domain.CatalogEntry {
	if len(entries) == 0 {
		return entries
	}

	urls := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i := range entries {
		u := entries[i].ArtworkURL
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}

	covers, err := s.store.CoversByImageURLs(ctx, urls, domain.TagOfficial)
	if err != nil {
		s.logger.Warn("cross-link lookup failed", "error", err)
		return entries
	}

	byURL := make(map[string]int64, len(covers))
	for i := range covers {
		byURL[covers[i].ImageURL] = covers[i].PublicID
	}
	for i := range entries {
		if id, ok := byURL[entries[i].ArtworkURL]; ok {
			entries[i].CoverPublicID = id
		}
	}
	return entries
}
