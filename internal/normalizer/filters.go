package normalizer

import (
	"regexp"
	"strings"
)

// summaryPattern matches total/balance lines that some exports interleave
// with transactions.
var summaryPattern = regexp.MustCompile(`(?i)^\s*(סה["״']?כ|סך\s*הכל|יתרת\s|יתרה\s|total\b|sub-?total\b|balance\b|grand\s+total\b)`)

// cardBillKeywords identify the issuer's consolidated monthly charge as it
// appears in a bank account feed. Each underlying card transaction is
// imported from the card statement, so the aggregate line is dropped.
var cardBillKeywords = []string{
	"ישראכרט",
	"אמריקן אקספרס",
	"דיינרס",
	"לאומי קארד",
	"מקס איט",
	"כ.א.ל",
	"כאל-",
	"ויזה כאל",
	"חיוב כרטיס",
	"כרטיסי אשראי",
	"כרטיס אשראי",
	"isracard",
	"american express",
	"amex",
	"diners",
	"max it",
	"visa cal",
	"leumi card",
}

// IsSummaryRow reports whether a description is a total or balance line.
func IsSummaryRow(description string) bool {
	return summaryPattern.MatchString(description)
}

// IsCardBillDescription reports whether description names a card issuer's
// consolidated charge.
func IsCardBillDescription(description string) bool {
	lower := strings.ToLower(description)
	for _, k := range cardBillKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
