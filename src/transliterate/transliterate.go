// Package transliterate converts romanized Hinglish text to Devanagari so
// that SMS questions enter the answering pipeline in the same script as the
// indexed documents.
package transliterate

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"swasthya/src/log"
)

// UnintelligibleReply is returned when normalization produces nothing a
// downstream model could work with.
const UnintelligibleReply = "Could not understand the message."

// graphemeMapping maps romanized grapheme clusters to Devanagari characters.
// Order matters for equal-length keys: the first entry wins.
var graphemeMapping = []mappingEntry{
	{"chh", "छ"},
	{"ch", "च"}, {"kh", "ख"}, {"gh", "घ"}, {"jh", "झ"}, {"th", "ठ"},
	{"dh", "ढ"}, {"ph", "फ"}, {"bh", "भ"}, {"sh", "श"}, {"gy", "ज्ञ"},
	{"tr", "त्र"},
	{"aa", "आ"}, {"ee", "ई"}, {"oo", "ऊ"}, {"ai", "ऐ"}, {"au", "औ"},
	{"a", "अ"}, {"i", "इ"}, {"u", "उ"}, {"e", "ए"}, {"o", "ओ"},
	{"k", "क"}, {"g", "ग"}, {"j", "ज"}, {"t", "ट"}, {"d", "ड"}, {"n", "न"},
	{"p", "प"}, {"b", "ब"}, {"m", "म"}, {"y", "य"}, {"r", "र"}, {"l", "ल"},
	{"v", "व"}, {"w", "व"}, {"s", "स"}, {"h", "ह"},
	{".", "।"}, {" ", " "},
}

// wordDictionary maps whole romanized words to their idiomatic Devanagari
// spellings. These take priority over the grapheme pass because a naive
// phoneme mapping would mangle them.
var wordDictionary = []mappingEntry{
	{"kaise", "कैसे"}, {"kya", "क्या"}, {"hai", "है"}, {"hain", "हैं"},
	{"hota", "होता"},
	{"mein", "में"}, {"ke", "के"}, {"ki", "की"}, {"is", "इस"}, {"ko", "को"},
	{"se", "से"},
	{"aur", "और"}, {"batao", "बताओ"}, {"steps", "स्टेप्स"},
	{"natural", "नेचुरल"}, {"hey", "हे"},
	{"dengue", "डेंगू"}, {"lakshan", "लक्षण"}, {"theek", "ठीक"},
}

type mappingEntry struct {
	roman      string
	devanagari string
}

type wordRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Transliterator normalizes incoming free text into Devanagari. It is safe
// for concurrent use; all state is built once and never mutated.
type Transliterator struct {
	words    []wordRule
	mappings []mappingEntry
}

// New builds a Transliterator from the built-in word dictionary and
// grapheme table. Mapping keys are sorted by descending length once here,
// not per scanned character.
func New() *Transliterator {
	words := make([]wordRule, 0, len(wordDictionary))
	for _, entry := range wordDictionary {
		words = append(words, wordRule{
			pattern:     regexp.MustCompile(`\b` + regexp.QuoteMeta(entry.roman) + `\b`),
			replacement: entry.devanagari,
		})
	}

	mappings := make([]mappingEntry, len(graphemeMapping))
	copy(mappings, graphemeMapping)
	sort.SliceStable(mappings, func(i, j int) bool {
		return len(mappings[i].roman) > len(mappings[j].roman)
	})

	return &Transliterator{
		words:    words,
		mappings: mappings,
	}
}

// Normalize converts raw text to Devanagari. It is a total function: input
// that cannot be made usable yields UnintelligibleReply, never an error.
func (t *Transliterator) Normalize(raw string) string {
	if !containsLatin(raw) {
		return raw
	}

	text := strings.ToLower(raw)

	// Whole-word substitutions first.
	for _, rule := range t.words {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}

	// Greedy longest-match scan over what remains. Unmatched characters
	// pass through verbatim.
	var out strings.Builder
	for i := 0; i < len(text); {
		matched := false
		for _, m := range t.mappings {
			if strings.HasPrefix(text[i:], m.roman) {
				out.WriteString(m.devanagari)
				i += len(m.roman)
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(text[i])
			i++
		}
	}

	result := out.String()
	log.Debug("transliterated message", "original", raw, "result", result)

	if !usable(result) {
		log.Info("transliteration produced an unusable string", "original", raw)
		return UnintelligibleReply
	}

	return result
}

// containsLatin reports whether the text holds any ASCII letter, the signal
// that it arrived in romanized form.
func containsLatin(text string) bool {
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// usable reports whether the normalized text carries at least one letter or
// digit, i.e. is more than punctuation and whitespace.
func usable(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
