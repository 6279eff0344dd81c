package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsCJK(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"latin", "Nine Inch Nails", false},
		{"latin with accents", "Björk", false},
		{"hiragana", "きゃりーぱみゅぱみゅ", true},
		{"katakana", "ヒカル", true},
		{"kanji", "宇多田", true},
		{"hangul", "방탄소년단", true},
		{"mixed", "Utada 宇多田", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsCJK(tt.input))
		})
	}
}
