package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/pdfparser"
)

func TestForFile(t *testing.T) {
	f := New(nil, &pdfparser.StaticExtractor{})

	tests := []struct {
		name string
		file string
		data []byte
		want parser.Format
	}{
		{"csv by extension", "a.csv", []byte("a,b,c"), parser.FormatDelimited},
		{"txt by extension", "a.TXT", []byte("a;b;c"), parser.FormatDelimited},
		{"pdf by magic", "statement", []byte("%PDF-1.7"), parser.FormatPDF},
		{"xlsx by magic with wrong extension", "a.csv", []byte("PK\x03\x04rest"), parser.FormatSpreadsheet},
		{"html saved as xls", "a.xls", []byte("<html><table></table></html>"), parser.FormatSpreadsheet},
		{"xls by extension", "a.xls", []byte{0x00}, parser.FormatSpreadsheet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.ForFile(tt.file, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Format())
		})
	}
}

func TestForFile_Unsupported(t *testing.T) {
	_, err := New(nil, nil).ForFile("a.docx", []byte("x"))
	assert.True(t, errors.Is(err, parsererror.ErrUnsupportedFormat))
}

func TestByFormat(t *testing.T) {
	f := New(nil, nil)
	for _, format := range []parser.Format{parser.FormatDelimited, parser.FormatSpreadsheet, parser.FormatPDF} {
		p, err := f.ByFormat(format)
		require.NoError(t, err)
		assert.Equal(t, format, p.Format())
	}
	_, err := f.ByFormat("ofx")
	assert.Error(t, err)
}

func TestIsAccepted(t *testing.T) {
	assert.True(t, IsAccepted("x/y/Statement.XLSX"))
	assert.True(t, IsAccepted("a.pdf"))
	assert.False(t, IsAccepted("a.docx"))
	assert.False(t, IsAccepted("README"))
}
