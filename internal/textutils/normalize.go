// Package textutils holds the text normalization shared by category
// resolution, merchant signatures and the column detector.
package textutils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks (Latin accents and Hebrew
// vowel points alike).
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize lower-cases s, strips diacritics, turns punctuation into spaces
// and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(StripDiacritics(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return CollapseSpaces(b.String())
}

// CollapseSpaces trims s and reduces every whitespace run to one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tokens returns the whitespace tokens of Normalize(s).
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// TokenOverlap scores two strings by shared distinct tokens divided by the
// size of the larger distinct token set. The result is in [0, 1].
func TokenOverlap(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		}
	}
	larger := len(ta)
	if len(tb) > larger {
		larger = len(tb)
	}
	return float64(shared) / float64(larger)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokens(s) {
		set[tok] = struct{}{}
	}
	return set
}

// HasNonLatinLetters reports whether s contains a letter outside the Latin
// script, such as Hebrew.
func HasNonLatinLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

// ContainsFold reports whether substr is in s, case-insensitively.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// MinSubstringTermLength is the letter count from which a term may match
// inside a longer word. Shorter terms only match whole tokens.
const MinSubstringTermLength = 5

// ContainsTerm reports whether term occurs in text after both are
// normalized. Terms shorter than MinSubstringTermLength letters must match
// whole tokens, so "ten" does not match "gluten".
func ContainsTerm(text, term string) bool {
	t := Normalize(term)
	if t == "" {
		return false
	}
	n := Normalize(text)
	if utf8.RuneCountInString(strings.ReplaceAll(t, " ", "")) < MinSubstringTermLength {
		return strings.Contains(" "+n+" ", " "+t+" ")
	}
	return strings.Contains(n, t)
}
