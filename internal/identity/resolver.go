// Package identity resolves artist credits: splitting multi-artist strings
// into individual names, mapping aliases onto canonical names, and proposing
// likely-duplicate pairs for merging.
package identity

import (
	"regexp"
	"strings"

	"github.com/coverscafe/covers-server/internal/domain"
)

// creditSeparator matches the junctions of a multi-artist credit string:
// "feat." / "ft." / "with" as word separators, plus "&" and ",".
var creditSeparator = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|with)\s+|\s*[&,]\s*`)

// SplitCredit breaks a combined artist credit into individual names, in
// order, with surrounding whitespace trimmed and empty fragments dropped.
// Splitting never consults the alias map; each fragment is resolved on its
// own afterwards.
func SplitCredit(credit string) []string {
	parts := creditSeparator.Split(credit, -1)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Resolve maps a name through the alias map to its canonical form. Exactly
// one hop: alias rows always point directly at a canonical name, never at
// another alias, so no chain walking is needed.
func Resolve(aliases domain.AliasMap, name string) string {
	return aliases.Resolve(name)
}

// Expand returns every name that should match a search for the given names:
// each name's canonical form plus all aliases pointing at that canonical.
// The result is deduplicated and keeps first-seen order.
func Expand(aliases domain.AliasMap, names []string) []string {
	reverse := make(map[string][]string, len(aliases))
	for alias, canonical := range aliases {
		reverse[canonical] = append(reverse[canonical], alias)
	}

	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, name := range names {
		canonical := aliases.Resolve(name)
		add(canonical)
		add(name)
		for _, alias := range reverse[canonical] {
			add(alias)
		}
	}
	return out
}
