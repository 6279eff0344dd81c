// Package catalog aggregates official album artwork across catalog
// territories: concurrent fan-out, dimension scoring, duplicate grouping,
// and ranked representative selection.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coverscafe/covers-server/internal/catalog/itunes"
	"github.com/coverscafe/covers-server/internal/config"
	"github.com/coverscafe/covers-server/internal/domain"
)

// Fetcher queries one catalog territory. Satisfied by *itunes.Client.
type Fetcher interface {
	SearchAlbums(ctx context.Context, artist, album, territory string, limit int) ([]itunes.Candidate, error)
}

// Prober resolves an artwork URL to its pixel dimensions.
type Prober func(ctx context.Context, url string) (width, height int, err error)

// Aggregator fans a search out over the configured territories and collapses
// the combined hits into one deduplicated, ranked result set.
type Aggregator struct {
	fetcher      Fetcher
	probe        Prober
	logger       *slog.Logger
	territories  []string
	limit        int
	probeTimeout time.Duration
}

// NewAggregator creates an aggregator over the given fetcher. The prober
// should share the fetcher's HTTP transport in production.
func NewAggregator(fetcher Fetcher, probe Prober, cfg config.CatalogConfig, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		fetcher:      fetcher,
		probe:        probe,
		logger:       logger,
		territories:  cfg.Territories,
		limit:        cfg.ResultLimit,
		probeTimeout: cfg.ProbeTimeout,
	}
}

// scored is a candidate carrying its ephemeral quality score. The score is
// width*height, 0 when the probe failed, and never leaves this package.
type scored struct {
	cand   itunes.Candidate
	width  int
	height int
	score  int
}

// Search queries each territory for the artist (and optional album), probes
// artwork dimensions, groups duplicates, and returns one ranked
// representative per group. An empty territory list falls back to the
// configured preference order; either way, list position is the tie-break
// preference. A territory that errors contributes nothing; an empty result
// is a successful result.
func (a *Aggregator) Search(ctx context.Context, artist, album string, territories []string) ([]domain.CatalogEntry, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	if artist == "" {
		return nil, nil
	}

	territories = normalizeTerritories(territories)
	if len(territories) == 0 {
		territories = a.territories
	}

	// One slot per territory keeps assembly order deterministic regardless
	// of which goroutine finishes first.
	perTerritory := make([][]scored, len(territories))
	var wg sync.WaitGroup
	for i, territory := range territories {
		wg.Add(1)
		go func(i int, territory string) {
			defer wg.Done()
			candidates, err := a.fetcher.SearchAlbums(ctx, artist, album, territory, a.limit)
			if err != nil {
				// A single failing territory must not sink the search.
				a.logger.Warn("territory search failed",
					"territory", territory,
					"error", err,
				)
				return
			}
			perTerritory[i] = a.scoreCandidates(ctx, candidates)
		}(i, territory)
	}
	wg.Wait()

	var flat []scored
	for _, batch := range perTerritory {
		flat = append(flat, batch...)
	}

	groups := groupCandidates(flat)
	rank := territoryRank(territories)

	searchArtist := strings.ToLower(artist)
	searchAlbum := strings.ToLower(album)

	entries := make([]domain.CatalogEntry, 0, len(groups))
	for _, g := range groups {
		best := g[0]
		for _, member := range g[1:] {
			if betterRepresentative(member, best, rank) {
				best = member
			}
		}

		entry := domain.CatalogEntry{
			ArtistName:    best.cand.ArtistName,
			AlbumTitle:    best.cand.AlbumTitle,
			ReleaseYear:   best.cand.ReleaseYear,
			ArtworkURL:    best.cand.ArtworkURL,
			Territory:     best.cand.Territory,
			SearchArtist:  searchArtist,
			SearchAlbum:   searchAlbum,
			Tags:          []string{domain.TagOfficial},
			SourcePayload: best.cand.Payload,
		}
		if best.score > 0 {
			entry.PixelDimensions = fmt.Sprintf("%dx%d", best.width, best.height)
		}
		entries = append(entries, entry)
	}

	// Newest releases first; title breaks ties.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ReleaseYear != entries[j].ReleaseYear {
			return entries[i].ReleaseYear > entries[j].ReleaseYear
		}
		return entries[i].AlbumTitle < entries[j].AlbumTitle
	})

	return entries, nil
}

// scoreCandidates probes every candidate's artwork concurrently. Each probe
// is bounded by its own timeout; failures degrade to a zero score.
func (a *Aggregator) scoreCandidates(ctx context.Context, candidates []itunes.Candidate) []scored {
	out := make([]scored, len(candidates))
	var wg sync.WaitGroup
	for i := range candidates {
		out[i].cand = candidates[i]
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, a.probeTimeout)
			defer cancel()

			w, h, err := a.probe(probeCtx, candidates[i].ArtworkURL)
			if err != nil {
				a.logger.Debug("dimension probe failed",
					"url", candidates[i].ArtworkURL,
					"error", err,
				)
				return
			}
			out[i].width = w
			out[i].height = h
			out[i].score = w * h
		}(i)
	}
	wg.Wait()
	return out
}

// groupCandidates buckets candidates that share either an artwork URL or a
// normalized title+year. Both keys are indexed so grouping is linear and
// independent of input order. Candidates with neither a title nor a year are
// only ever grouped by URL.
func groupCandidates(candidates []scored) [][]scored {
	byURL := make(map[string]int)
	byTitleYear := make(map[string]int)
	var groups [][]scored

	for _, c := range candidates {
		titleKey, keyed := titleYearKey(c.cand.AlbumTitle, c.cand.ReleaseYear)

		idx, ok := byURL[c.cand.ArtworkURL]
		if !ok && keyed {
			idx, ok = byTitleYear[titleKey]
		}
		if !ok {
			idx = len(groups)
			groups = append(groups, nil)
		}

		groups[idx] = append(groups[idx], c)
		byURL[c.cand.ArtworkURL] = idx
		if keyed {
			if _, seen := byTitleYear[titleKey]; !seen {
				byTitleYear[titleKey] = idx
			}
		}
	}

	return groups
}

// titleYearKey builds the secondary grouping key. A candidate with an empty
// title and no year gets no key, so unrelated unknowns never collapse.
func titleYearKey(title string, year int) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" && year == 0 {
		return "", false
	}
	return t + "|" + strconv.Itoa(year), true
}

// betterRepresentative reports whether x should represent a group over y.
// Quality first, then non-CJK artist credits, then territory preference.
func betterRepresentative(x, y scored, rank map[string]int) bool {
	if x.score != y.score {
		return x.score > y.score
	}
	xCJK := containsCJK(x.cand.ArtistName)
	yCJK := containsCJK(y.cand.ArtistName)
	if xCJK != yCJK {
		return !xCJK
	}
	return territoryIndex(rank, x.cand.Territory) < territoryIndex(rank, y.cand.Territory)
}

// normalizeTerritories lowercases, trims, and deduplicates while preserving
// first-seen order.
func normalizeTerritories(territories []string) []string {
	seen := make(map[string]bool, len(territories))
	var out []string
	for _, t := range territories {
		code := strings.ToLower(strings.TrimSpace(t))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// territoryRank maps uppercase territory codes to their list position.
func territoryRank(territories []string) map[string]int {
	rank := make(map[string]int, len(territories))
	for i, t := range territories {
		rank[strings.ToUpper(t)] = i
	}
	return rank
}

func territoryIndex(rank map[string]int, territory string) int {
	if i, ok := rank[territory]; ok {
		return i
	}
	return len(rank)
}
