package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest_FindsNearDuplicates(t *testing.T) {
	names := []string{"Nine Inch Nails", "Nine Inch Nailz", "Burial"}

	got := Suggest(names, 0.9)
	require.Len(t, got, 1)
	assert.Equal(t, "Nine Inch Nails", got[0].Left)
	assert.Equal(t, "Nine Inch Nailz", got[0].Right)
	assert.GreaterOrEqual(t, got[0].Similarity, 0.9)
}

func TestSuggest_SkipsCaseFoldedEquals(t *testing.T) {
	got := Suggest([]string{"Burial", "burial", "BURIAL"}, 0.5)
	assert.Empty(t, got, "names differing only by case are the same search credit already")
}

func TestSuggest_ThresholdFiltersDistantNames(t *testing.T) {
	got := Suggest([]string{"Burial", "Four Tet"}, 0.9)
	assert.Empty(t, got)
}

func TestSuggest_SortedStrongestFirst(t *testing.T) {
	names := []string{"Aphex Twin", "Aphex Twyn", "Aphex Twinn"}

	got := Suggest(names, 0.8)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Similarity, got[i].Similarity)
	}
}

func TestSuggest_DefaultThreshold(t *testing.T) {
	got := Suggest([]string{"Burial", "Four Tet"}, 0)
	assert.Empty(t, got, "zero threshold falls back to the default, not match-everything")
}
