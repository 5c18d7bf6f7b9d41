package csvparser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/parsererror"
)

func TestParse_Windows1255WithBanner(t *testing.T) {
	content := "בנק הפועלים\nחשבון 12-345-678901\nתאריך,תיאור הפעולה,אסמכתא,חובה,זכות,יתרה\n01/03/2024,שופרסל דיל,1001,120.50,,5000\n02/03/2024,משכורת,1002,,9000,14000\n"
	raw, err := charmap.Windows1255.NewEncoder().String(content)
	require.NoError(t, err)

	p := New(logging.NewMockLogger())
	tbl, err := p.Parse(context.Background(), parser.Source{Name: "poalim.csv", Data: []byte(raw), Institution: models.InstitutionHapoalim})
	require.NoError(t, err)

	assert.Equal(t, []string{"תאריך", "תיאור הפעולה", "אסמכתא", "חובה", "זכות", "יתרה"}, tbl.Headers)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "שופרסל דיל", tbl.Rows[0][1].Text)
	assert.Equal(t, "9000", tbl.Rows[1][4].Text)
	assert.Contains(t, tbl.Meta.Banner, "בנק הפועלים")
	assert.Equal(t, parser.FormatDelimited, p.Format())
}

func TestParse_UnknownIssuerFallsBackToWindows1255(t *testing.T) {
	raw, err := charmap.Windows1255.NewEncoder().String("תאריך,תיאור,סכום\n01/03/2024,מכולת השכונה,-80.00\n")
	require.NoError(t, err)

	tbl, err := New(nil).Parse(context.Background(), parser.Source{Name: "export.csv", Data: []byte(raw), Institution: models.InstitutionOther})
	require.NoError(t, err)
	assert.Equal(t, []string{"תאריך", "תיאור", "סכום"}, tbl.Headers)
	assert.Equal(t, "מכולת השכונה", tbl.Rows[0][1].Text)
}

func TestParse_BOMSemicolonAndRaggedRows(t *testing.T) {
	content := "\xEF\xBB\xBFDate;Description;Amount\n01/03/2024;\"Coffee \"\"Roasters\"\"\";-12.00\n02/03/2024;Refund;5.00;extra\n03/03/2024;Short\n"
	tbl, err := New(nil).Parse(context.Background(), parser.Source{Name: "x.csv", Data: []byte(content), Institution: models.InstitutionOther})
	require.NoError(t, err)

	assert.Equal(t, "Date", tbl.Headers[0])
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, `Coffee "Roasters"`, tbl.Rows[0][1].Text)
	assert.Len(t, tbl.Rows[1], 4)
	assert.Len(t, tbl.Rows[2], 2)
}

func TestParse_Errors(t *testing.T) {
	p := New(nil)
	_, err := p.Parse(context.Background(), parser.Source{Name: "empty.csv", Data: []byte("  \n")})
	var extraction *parsererror.DataExtractionError
	assert.True(t, errors.As(err, &extraction))

	_, err = p.Parse(context.Background(), parser.Source{Name: "noheader.csv", Data: []byte("a\nb\nc\n")})
	assert.True(t, errors.As(err, &extraction))
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ',', SniffDelimiter("a,b,c\n1,2,3"))
	assert.Equal(t, ';', SniffDelimiter("a;b;c\n1;2,5;3"))
	assert.Equal(t, '\t', SniffDelimiter("a\tb\tc"))
	assert.Equal(t, '|', SniffDelimiter("a|b|c"))
	assert.Equal(t, ',', SniffDelimiter("nothing"))
}
