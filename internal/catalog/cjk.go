package catalog

// cjkRanges covers the Hiragana, Katakana (full and half width), CJK
// ideograph (unified + extension A + compatibility), and Hangul blocks.
var cjkRanges = [][2]rune{
	{0x1100, 0x11FF}, // Hangul Jamo
	{0x3040, 0x30FF}, // Hiragana + Katakana
	{0x3130, 0x318F}, // Hangul compatibility Jamo
	{0x3400, 0x4DBF}, // CJK extension A
	{0x4E00, 0x9FFF}, // CJK unified ideographs
	{0xA960, 0xA97F}, // Hangul Jamo extended-A
	{0xAC00, 0xD7AF}, // Hangul syllables
	{0xF900, 0xFAFF}, // CJK compatibility ideographs
	{0xFF66, 0xFF9F}, // Halfwidth Katakana
}

// containsCJK reports whether any rune in s falls in a CJK script block.
// Used as a ranking tie-break: localized duplicate credits from CJK
// territories rank below the requester's script.
func containsCJK(s string) bool {
	for _, r := range s {
		for _, rng := range cjkRanges {
			if r >= rng[0] && r <= rng[1] {
				return true
			}
		}
	}
	return false
}
