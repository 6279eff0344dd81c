package domain

// ArtistAlias maps a non-canonical artist-name spelling to its canonical
// name. Aliases are unique and never chain: a value appearing in the alias
// column never appears in the canonical column, so resolution always
// terminates in one hop.
type ArtistAlias struct {
	Alias     string `json:"alias"`
	Canonical string `json:"canonical"`
}

// AliasMap is an in-memory alias → canonical lookup, passed explicitly into
// resolution so callers (and tests) control exactly which mapping applies.
type AliasMap map[string]string

// Resolve returns the canonical name for the given name, or the name itself
// when no alias exists.
func (m AliasMap) Resolve(name string) string {
	if canonical, ok := m[name]; ok {
		return canonical
	}
	return name
}
