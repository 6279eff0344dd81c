package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/coverscafe/covers-server/internal/domain"
	"github.com/coverscafe/covers-server/internal/errors"
	"github.com/coverscafe/covers-server/internal/fingerprint"
	"github.com/coverscafe/covers-server/internal/media/images"
	"github.com/coverscafe/covers-server/internal/store"
)

// UploadStore is the persistence surface the upload service needs.
type UploadStore interface {
	CreateCover(ctx context.Context, c *domain.Cover) error
	CoverByFingerprint(ctx context.Context, fp string) (*domain.Cover, error)
}

// DuplicateCheck is the outcome of a pre-upload fingerprint probe.
type DuplicateCheck struct {
	Fingerprint string        `json:"fingerprint"`
	Duplicate   bool          `json:"duplicate"`
	Existing    *domain.Cover `json:"existing,omitempty"`
}

// UploadRequest carries an upload's image bytes and metadata.
type UploadRequest struct {
	Title    string
	Artist   string
	Year     int
	ImageURL string
	Tags     []string
	Public   bool
	Image    []byte
}

// UploadService guards cover uploads against exact perceptual-hash
// duplicates and enriches accepted covers with a blurhash placeholder.
type UploadService struct {
	store  UploadStore
	logger *slog.Logger
}

func NewUploadService(store UploadStore, logger *slog.Logger) *UploadService {
	return &UploadService{store: store, logger: logger}
}

// CheckDuplicate fingerprints the image and reports whether an identical
// cover is already in the library. Only exact fingerprint matches count;
// near-duplicates pass.
func (s *UploadService) CheckDuplicate(ctx context.Context, image []byte) (*DuplicateCheck, error) {
	if len(image) == 0 {
		return nil, errors.Validationf("image is required")
	}

	fp, err := fingerprint.Compute(image)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "unreadable image")
	}

	existing, err := s.store.CoverByFingerprint(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		return &DuplicateCheck{Fingerprint: fp}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "fingerprint lookup")
	}
	return &DuplicateCheck{Fingerprint: fp, Duplicate: true, Existing: existing}, nil
}

// Upload stores a new cover unless its fingerprint already exists. The
// rejection names the existing cover so the client can link to it instead.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*domain.Cover, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.Validationf("title is required")
	}
	if strings.TrimSpace(req.Artist) == "" {
		return nil, errors.Validationf("artist is required")
	}

	check, err := s.CheckDuplicate(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	if check.Duplicate {
		return nil, &errors.Error{
			Code:    errors.CodeConflict,
			Message: "identical artwork already uploaded",
			Details: map[string]any{"existing_id": check.Existing.ID},
		}
	}

	cover := domain.Cover{
		Title:       strings.TrimSpace(req.Title),
		Artist:      strings.TrimSpace(req.Artist),
		Year:        req.Year,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		Fingerprint: check.Fingerprint,
		Public:      req.Public,
	}
	if cover.Tags == nil {
		cover.Tags = []string{}
	}

	// A missing placeholder is cosmetic; never fail the upload over it.
	if hash, err := images.ComputeBlurHash(req.Image); err != nil {
		s.logger.Warn("blurhash computation failed", "error", err)
	} else {
		cover.BlurHash = hash
	}

	if err := s.store.CreateCover(ctx, &cover); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "store cover")
	}

	s.logger.Info("cover uploaded",
		"id", cover.ID,
		"public_id", cover.PublicID,
		"fingerprint", cover.Fingerprint,
	)
	return &cover, nil
}
