package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverscafe/covers-server/internal/domain"
	apperrors "github.com/coverscafe/covers-server/internal/errors"
	"github.com/coverscafe/covers-server/internal/store"
)

type fakeUploadStore struct {
	byFingerprint map[string]*domain.Cover
	created       *domain.Cover
}

func (f *fakeUploadStore) CreateCover(_ context.Context, c *domain.Cover) error {
	c.ID = "cov-test"
	c.PublicID = 7
	f.created = c
	return nil
}

func (f *fakeUploadStore) CoverByFingerprint(_ context.Context, fp string) (*domain.Cover, error) {
	if c, ok := f.byFingerprint[fp]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(x * 8)
			img.Set(x, y, color.RGBA{v, 128, 255 - v, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCheckDuplicate_NewImage(t *testing.T) {
	svc := NewUploadService(&fakeUploadStore{}, discardLogger())

	check, err := svc.CheckDuplicate(context.Background(), testImage(t))
	require.NoError(t, err)
	assert.False(t, check.Duplicate)
	assert.Len(t, check.Fingerprint, 16)
	assert.Nil(t, check.Existing)
}

func TestCheckDuplicate_ExactMatch(t *testing.T) {
	image := testImage(t)
	fakeStore := &fakeUploadStore{}
	svc := NewUploadService(fakeStore, discardLogger())

	// Learn the fingerprint first, then seed the store with it.
	check, err := svc.CheckDuplicate(context.Background(), image)
	require.NoError(t, err)
	existing := &domain.Cover{ID: "cov-existing", Fingerprint: check.Fingerprint}
	fakeStore.byFingerprint = map[string]*domain.Cover{check.Fingerprint: existing}

	check, err = svc.CheckDuplicate(context.Background(), image)
	require.NoError(t, err)
	assert.True(t, check.Duplicate)
	assert.Equal(t, "cov-existing", check.Existing.ID)
}

func TestCheckDuplicate_RejectsGarbage(t *testing.T) {
	svc := NewUploadService(&fakeUploadStore{}, discardLogger())

	_, err := svc.CheckDuplicate(context.Background(), []byte("not an image"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CheckDuplicate(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpload_StoresCoverWithFingerprintAndBlurhash(t *testing.T) {
	fakeStore := &fakeUploadStore{}
	svc := NewUploadService(fakeStore, discardLogger())

	cover, err := svc.Upload(context.Background(), UploadRequest{
		Title:  "Untrue",
		Artist: "Burial",
		Year:   2007,
		Tags:   []string{"fanart"},
		Public: true,
		Image:  testImage(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "cov-test", cover.ID)
	assert.NotEmpty(t, cover.Fingerprint)
	assert.NotEmpty(t, cover.BlurHash)
	assert.True(t, cover.Public)
	require.NotNil(t, fakeStore.created)
	assert.Equal(t, cover.Fingerprint, fakeStore.created.Fingerprint)
}

func TestUpload_DuplicateConflict(t *testing.T) {
	image := testImage(t)
	fakeStore := &fakeUploadStore{}
	svc := NewUploadService(fakeStore, discardLogger())

	check, err := svc.CheckDuplicate(context.Background(), image)
	require.NoError(t, err)
	fakeStore.byFingerprint = map[string]*domain.Cover{
		check.Fingerprint: {ID: "cov-existing", Fingerprint: check.Fingerprint},
	}

	_, err = svc.Upload(context.Background(), UploadRequest{
		Title:  "Untrue",
		Artist: "Burial",
		Image:  image,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Nil(t, fakeStore.created, "nothing is stored on a duplicate")
}

func TestUpload_RequiresMetadata(t *testing.T) {
	svc := NewUploadService(&fakeUploadStore{}, discardLogger())

	_, err := svc.Upload(context.Background(), UploadRequest{Artist: "Burial", Image: testImage(t)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Upload(context.Background(), UploadRequest{Title: "Untrue", Image: testImage(t)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
