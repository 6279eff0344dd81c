package identity

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// DefaultSuggestionThreshold is the minimum Jaro-Winkler similarity for a
// pair of artist names to be proposed as a merge.
const DefaultSuggestionThreshold = 0.9

// Suggestion is a pair of distinct artist names that look like the same
// artist spelled differently.
type Suggestion struct {
	Left       string  `json:"left"`
	Right      string  `json:"right"`
	Similarity float64 `json:"similarity"`
}

// Suggest compares every pair of catalog artist names case-insensitively and
// returns pairs whose Jaro-Winkler similarity meets the threshold, strongest
// first. Names that fold to the same lowercase string are skipped; those are
// already the same credit as far as search is concerned.
func Suggest(names []string, threshold float64) []Suggestion {
	if threshold <= 0 {
		threshold = DefaultSuggestionThreshold
	}

	folded := make([]string, len(names))
	for i, n := range names {
		folded[i] = strings.ToLower(strings.TrimSpace(n))
	}

	var out []Suggestion
	for i := 0; i < len(names); i++ {
		if folded[i] == "" {
			continue
		}
		for j := i + 1; j < len(names); j++ {
			if folded[j] == "" || folded[i] == folded[j] {
				continue
			}
			sim, err := edlib.StringsSimilarity(folded[i], folded[j], edlib.JaroWinkler)
			if err != nil {
				continue
			}
			if float64(sim) >= threshold {
				out = append(out, Suggestion{
					Left:       names[i],
					Right:      names[j],
					Similarity: float64(sim),
				})
			}
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Similarity > out[b].Similarity
	})
	return out
}
