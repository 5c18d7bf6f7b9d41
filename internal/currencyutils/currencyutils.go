// Package currencyutils converts statement amount cells to decimals.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Currency marks and codes seen in supported statements.
	symbolRegex = regexp.MustCompile(`(?i)(₪|\$|€|£|ש"ח|ש״ח|שח|\bILS\b|\bNIS\b|\bUSD\b|\bEUR\b|\bGBP\b)`)
	shapeRegex  = regexp.MustCompile(`^[-+(]?\s*(₪|\$|€|£)?\s*-?\d{1,3}([,']?\d{3})*([.,]\d{1,2})?\s*(₪|\$|€|£)?\s*[)-]?$`)
	codeRegex   = regexp.MustCompile(`\b(ILS|NIS|USD|EUR|GBP|CHF|JPY)\b`)
)

var symbolCodes = map[string]string{
	"₪": "ILS",
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

// ParseAmount parses an amount cell. Empty cells are zero. Accounting
// negatives "(12.50)" and trailing minus "12.50-" are supported.
func ParseAmount(s string) (decimal.Decimal, error) {
	std := StandardizeAmount(s)
	if std == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(std)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", s, err)
	}
	return d, nil
}

// StandardizeAmount rewrites s into a form decimal.NewFromString accepts.
func StandardizeAmount(s string) string {
	s = strings.TrimSpace(symbolRegex.ReplaceAllString(s, ""))
	s = strings.NewReplacer("\u200f", "", "\u200e", "", "\u00a0", "", " ", "", "'", "").Replace(s)
	if s == "" {
		return ""
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}
	if strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimPrefix(s, "-")
	}
	s = strings.TrimPrefix(s, "+")

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ".") < strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	if negative && s != "" {
		s = "-" + s
	}
	return s
}

// IsAmountShaped reports whether s looks like a money value.
func IsAmountShaped(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return shapeRegex.MatchString(s)
}

// CurrencyOf returns the ISO code of the first currency mark in s, or "".
func CurrencyOf(s string) string {
	upper := strings.ToUpper(s)
	if m := codeRegex.FindString(upper); m != "" {
		if m == "NIS" {
			return "ILS"
		}
		return m
	}
	for symbol, code := range symbolCodes {
		if strings.Contains(s, symbol) {
			return code
		}
	}
	if strings.Contains(s, `ש"ח`) || strings.Contains(s, "ש״ח") {
		return "ILS"
	}
	return ""
}
