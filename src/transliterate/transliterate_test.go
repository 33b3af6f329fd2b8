package transliterate_test

import (
	"testing"

	"swasthya/src/transliterate"
)

func TestNormalize(t *testing.T) {
	tr := transliterate.New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "devanagari passes through unchanged",
			input: "डेंगू के लक्षण क्या हैं",
			want:  "डेंगू के लक्षण क्या हैं",
		},
		{
			name:  "dictionary words map to idiomatic spellings",
			input: "kya hai",
			want:  "क्या है",
		},
		{
			name:  "longest grapheme cluster wins",
			input: "chai",
			want:  "चऐ",
		},
		{
			name:  "aspirate digraph beats single consonant",
			input: "bhai",
			want:  "भऐ",
		},
		{
			name:  "dictionary pass runs before grapheme pass",
			input: "dengue kaise hota hai",
			want:  "डेंगू कैसे होता है",
		},
		{
			name:  "mixed case input is lowered first",
			input: "Kya Hai",
			want:  "क्या है",
		},
		{
			name:  "full stop becomes danda",
			input: "theek hai.",
			want:  "ठीक है।",
		},
		{
			name:  "unmapped characters pass through verbatim",
			input: "dengue 104",
			want:  "डेंगू 104",
		},
		{
			name:  "empty input passes through unchanged",
			input: "",
			want:  "",
		},
		{
			name:  "punctuation-only input passes through unchanged",
			input: "...   ",
			want:  "...   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotentForDevanagari(t *testing.T) {
	tr := transliterate.New()

	input := "kya dengue ka lakshan kya hai"
	once := tr.Normalize(input)
	twice := tr.Normalize(once)

	if once != twice {
		t.Errorf("second pass changed the text: %q -> %q", once, twice)
	}
}
