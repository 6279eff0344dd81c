package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/coverscafe/covers-server/internal/config"
	"github.com/coverscafe/covers-server/internal/domain"
	"github.com/coverscafe/covers-server/internal/errors"
	"github.com/coverscafe/covers-server/internal/id"
	"github.com/coverscafe/covers-server/internal/identity"
)

// IdentityStore is the persistence surface the identity service needs.
type IdentityStore interface {
	EntriesByArtists(ctx context.Context, names []string) ([]domain.MergeRecord, error)
	MergeArtists(ctx context.Context, names []string, canonical string) (created []string, changed []domain.ArtistAlias, err error)
	RestoreArtistNames(ctx context.Context, records []domain.MergeRecord, created []string, changed []domain.ArtistAlias) error
	AliasesFor(ctx context.Context, canonical string) ([]string, error)
	DistinctArtistNames(ctx context.Context) ([]string, error)
}

// MergeResult is what a merge hands back to the caller: the alias rows now in
// effect and the one-shot token that can reverse the merge until ExpiresAt.
type MergeResult struct {
	CanonicalName string    `json:"canonical_name"`
	Aliases       []string  `json:"aliases"`
	UndoToken     string    `json:"undo_token"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// IdentityService performs bulk artist merges with a server-enforced undo
// window. Snapshots live in an expiring in-memory cache; once the TTL lapses
// the merge is permanent no matter what the client believes.
type IdentityService struct {
	store      IdentityStore
	snapshots  *gocache.Cache
	mu         sync.Mutex
	undoWindow time.Duration
	logger     *slog.Logger
}

func NewIdentityService(store IdentityStore, cfg config.MergeConfig, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		store:      store,
		snapshots:  gocache.New(cfg.UndoWindow, time.Minute),
		undoWindow: cfg.UndoWindow,
		logger:     logger,
	}
}

// Merge renames every catalog entry credited to one of the given names to the
// canonical name and records the non-canonical names as aliases. The
// pre-merge state is snapshotted first, so Undo can restore exactly what the
// merge changed and nothing else.
func (s *IdentityService) Merge(ctx context.Context, names []string, canonical string) (*MergeResult, error) {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return nil, errors.Validationf("canonical name is required")
	}

	cleaned := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	distinct := false
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cleaned = append(cleaned, name)
		if name != canonical {
			distinct = true
		}
	}
	if !distinct {
		return nil, errors.Validationf("merge needs at least one name besides the canonical")
	}

	records, err := s.store.EntriesByArtists(ctx, cleaned)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "snapshot pre-merge state")
	}

	created, changed, err := s.store.MergeArtists(ctx, cleaned, canonical)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "merge artists")
	}

	now := time.Now()
	snapshot := domain.MergeSnapshot{
		ID:             id.MustGenerate("snap"),
		CanonicalName:  canonical,
		Records:        records,
		AliasesCreated: created,
		AliasesChanged: changed,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.undoWindow),
	}
	s.snapshots.Set(snapshot.ID, snapshot, s.undoWindow)

	s.logger.Info("artists merged",
		"canonical", canonical,
		"names", len(cleaned),
		"entries", len(records),
		"aliases_created", len(created),
	)

	aliases, err := s.store.AliasesFor(ctx, canonical)
	if err != nil {
		s.logger.Warn("alias readback failed", "canonical", canonical, "error", err)
		aliases = created
	}

	return &MergeResult{
		CanonicalName: canonical,
		Aliases:       aliases,
		UndoToken:     snapshot.ID,
		ExpiresAt:     snapshot.ExpiresAt,
	}, nil
}

// Undo reverses the merge identified by token: every snapshotted entry gets
// its original artist name back and the alias table is restored to its
// pre-merge state. The token is consumed by the first successful undo;
// expired or unknown tokens report the window as closed.
func (s *IdentityService) Undo(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.Validationf("undo token is required")
	}

	s.mu.Lock()
	value, ok := s.snapshots.Get(token)
	if ok {
		s.snapshots.Delete(token)
	}
	s.mu.Unlock()
	if !ok {
		return errors.Expired("undo window has closed")
	}

	snapshot := value.(domain.MergeSnapshot)
	if err := s.store.RestoreArtistNames(ctx, snapshot.Records, snapshot.AliasesCreated, snapshot.AliasesChanged); err != nil {
		// The merge is still fully in place; hand the token back for the
		// rest of its window so a transient failure can be retried.
		if remaining := time.Until(snapshot.ExpiresAt); remaining > 0 {
			s.mu.Lock()
			s.snapshots.Set(token, snapshot, remaining)
			s.mu.Unlock()
		}
		return errors.Wrap(err, errors.CodeInternal, "restore pre-merge state")
	}

	s.logger.Info("merge undone",
		"canonical", snapshot.CanonicalName,
		"entries", len(snapshot.Records),
	)
	return nil
}

// Suggestions proposes likely-duplicate artist name pairs from the catalog
// cache using Jaro-Winkler similarity.
func (s *IdentityService) Suggestions(ctx context.Context, threshold float64) ([]identity.Suggestion, error) {
	names, err := s.store.DistinctArtistNames(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list artist names")
	}
	return identity.Suggest(names, threshold), nil
}
