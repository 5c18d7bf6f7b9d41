package pdfparser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/parsererror"
)

const hapoalimText = `בנק הפועלים
תנועות בחשבון
מספר חשבון: 12-345-678901
שם הלקוח: ישראל ישראלי
תאריך תיאור הפעולה סכום יתרה
יתרת פתיחה 5,000.00 ₪
01/03/2024 שופרסל דיל 120.50 ₪ 4,879.50 ₪ חובה
02/03/2024 משכורת חברה בע"מ 9,000.00 ₪ 13,879.50 ₪ זכות
02/03/2024 משכורת חברה בע"מ 9,000.00 ₪ 13,879.50 ₪ זכות
עמוד 1 מתוך 2
05/03/2024 הוראת קבע חשמל 310.00 ₪ 13,569.50 ₪ חובה
סה"כ חובה 430.50 ₪
`

func TestParse_Hapoalim(t *testing.T) {
	mock := logging.NewMockLogger()
	p := New(mock, &StaticExtractor{Text: hapoalimText})

	tbl, err := p.Parse(context.Background(), parser.Source{Name: "statement.pdf", Institution: models.InstitutionOther})
	require.NoError(t, err)

	assert.Equal(t, models.InstitutionHapoalim, tbl.Meta.Institution)
	assert.Equal(t, "12-345-678901", tbl.Meta.AccountNumber)
	assert.Equal(t, "ישראל ישראלי", tbl.Meta.HolderName)
	assert.Equal(t, []string{HeaderDate, HeaderDescription, HeaderAmount, HeaderBalance}, tbl.Headers)

	require.Len(t, tbl.Rows, 3, "repeated row is dropped and total lines are skipped")
	assert.Equal(t, []string{"01/03/2024", "שופרסל דיל", "-120.50", "4,879.50"}, tbl.TextRows()[0])
	assert.Equal(t, []string{"02/03/2024", `משכורת חברה בע"מ`, "9,000.00", "13,879.50"}, tbl.TextRows()[1])
	assert.Equal(t, "-310.00", tbl.TextRows()[2][2])

	assert.True(t, mock.HasEntry("DEBUG", "dropping row repeated in document"))
	assert.Equal(t, parser.FormatPDF, p.Format())
}

func TestParse_WrongBankIsLocalized(t *testing.T) {
	p := New(nil, &StaticExtractor{Text: "בנק לאומי\n01/03/2024 x 1.00 ₪ 2.00 ₪ חובה"})
	_, err := p.Parse(context.Background(), parser.Source{Name: "leumi.pdf"})

	var invalid *parsererror.InvalidFormatError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, genericReject, invalid.LocalizedMsg)
}

func TestParse_DeclaredInstitutionWithoutMarkers(t *testing.T) {
	p := New(nil, &StaticExtractor{Text: "some other document"})
	_, err := p.Parse(context.Background(), parser.Source{Name: "x.pdf", Institution: models.InstitutionHapoalim})

	var invalid *parsererror.InvalidFormatError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, hapoalimLayout.RejectMessage, invalid.LocalizedMsg)
}

func TestParse_NoRows(t *testing.T) {
	p := New(nil, &StaticExtractor{Text: "בנק הפועלים\nאין תנועות"})
	_, err := p.Parse(context.Background(), parser.Source{Name: "x.pdf"})

	var extraction *parsererror.DataExtractionError
	assert.True(t, errors.As(err, &extraction))
}

func TestParse_ExtractorFailure(t *testing.T) {
	p := New(nil, &StaticExtractor{Err: errors.New("encrypted")})
	_, err := p.Parse(context.Background(), parser.Source{Name: "x.pdf"})

	var invalid *parsererror.InvalidFormatError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Error(), "encrypted")
}

func TestLibraryExtractor_RejectsNonPDF(t *testing.T) {
	_, err := NewLibraryExtractor().ExtractText(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
