package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverscafe/covers-server/internal/domain"
	"github.com/coverscafe/covers-server/internal/store"
)

func TestCreateAlias_Unique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alias := domain.ArtistAlias{Alias: "NIN", Canonical: "Nine Inch Nails"}
	require.NoError(t, s.CreateAlias(ctx, alias))

	err := s.CreateAlias(ctx, domain.ArtistAlias{Alias: "NIN", Canonical: "Someone Else"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestAliasesFor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAlias(ctx, domain.ArtistAlias{Alias: "NIN", Canonical: "Nine Inch Nails"}))
	require.NoError(t, s.CreateAlias(ctx, domain.ArtistAlias{Alias: "nine inch nails", Canonical: "Nine Inch Nails"}))
	require.NoError(t, s.CreateAlias(ctx, domain.ArtistAlias{Alias: "4T", Canonical: "Four Tet"}))

	aliases, err := s.AliasesFor(ctx, "Nine Inch Nails")
	require.NoError(t, err)
	assert.Equal(t, []string{"NIN", "nine inch nails"}, aliases)
}
