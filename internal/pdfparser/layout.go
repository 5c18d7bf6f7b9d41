package pdfparser

import (
	"regexp"

	"fjacquet/bank-ingest/internal/models"
)

// Layout is the text layout of one issuer's PDF statement.
type Layout struct {
	Institution models.Institution
	// Markers: at least one must appear in the extracted text.
	Markers       []string
	AccountNumber *regexp.Regexp
	HolderName    *regexp.Regexp
	// Row captures date, description, amount, balance and row type.
	Row *regexp.Regexp
	// SkipKeywords mark header and total lines.
	SkipKeywords []string
	// DebitMarker is the row-type value for money leaving the account.
	DebitMarker string
	// RejectMessage is shown to users when the document does not match.
	RejectMessage string
}

var hapoalimLayout = Layout{
	Institution:   models.InstitutionHapoalim,
	Markers:       []string{"בנק הפועלים", "bank hapoalim", "bankhapoalim"},
	AccountNumber: regexp.MustCompile(`(?:מספר חשבון|חשבון מספר|חשבון)\s*:?\s*(\d{2,3}[-/]\d{3}[-/]\d{4,9}|\d{6,12})`),
	HolderName:    regexp.MustCompile(`(?:שם הלקוח|שם לקוח|בעלי החשבון|בעל החשבון)\s*:?\s*([^\n\d:]{2,60})`),
	Row: regexp.MustCompile(
		`^(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)\s+(-?[\d,]+\.\d{2})\s*₪\s*(-?[\d,]+\.\d{2})\s*₪?\s*(חובה|זכות)\s*$`),
	SkipKeywords:  []string{"סה\"כ", "סה״כ", "יתרת פתיחה", "יתרה קודמת", "יתרה לסוף", "תאריך ערך", "תיאור הפעולה", "עמוד "},
	DebitMarker:   "חובה",
	RejectMessage: "הקובץ אינו דף חשבון של בנק הפועלים",
}

var layouts = map[models.Institution]Layout{
	models.InstitutionHapoalim: hapoalimLayout,
}

// LayoutFor returns the PDF layout of inst.
func LayoutFor(inst models.Institution) (Layout, bool) {
	l, ok := layouts[inst]
	return l, ok
}
