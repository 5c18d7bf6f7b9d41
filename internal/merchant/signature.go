// Package merchant derives a stable merchant identity from noisy statement
// descriptions.
package merchant

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fjacquet/bank-ingest/internal/textutils"
)

const (
	// MaxTokens is how many leading tokens form a signature.
	MaxTokens = 2
	// MinTokenLength: shorter tokens are branch codes or legal suffixes.
	MinTokenLength = 3
	// MinSignatureLength: shorter residues are not clustered.
	MinSignatureLength = 2
)

// Signature returns the lower-cased merchant signature of description, or
// "" when too little text remains to identify a merchant.
func Signature(description string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(textutils.StripDiacritics(description)))

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, MaxTokens)
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLength {
			continue
		}
		tokens = append(tokens, f)
		if len(tokens) == MaxTokens {
			break
		}
	}

	sig := strings.Join(tokens, " ")
	if utf8.RuneCountInString(strings.ReplaceAll(sig, " ", "")) < MinSignatureLength {
		return ""
	}
	return sig
}

// SameMerchant reports whether a and b share a non-empty signature.
func SameMerchant(a, b string) bool {
	sa := Signature(a)
	return sa != "" && sa == Signature(b)
}

// Group buckets descriptions by signature, dropping excluded ones.
func Group(descriptions []string) map[string][]string {
	groups := make(map[string][]string)
	for _, d := range descriptions {
		if sig := Signature(d); sig != "" {
			groups[sig] = append(groups[sig], d)
		}
	}
	return groups
}
