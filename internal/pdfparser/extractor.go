package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor turns PDF bytes into text, one line per visual row.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// LibraryExtractor extracts text with github.com/ledongthuc/pdf.
type LibraryExtractor struct{}

// NewLibraryExtractor returns the production extractor.
func NewLibraryExtractor() *LibraryExtractor {
	return &LibraryExtractor{}
}

// ExtractText reads every page row by row, falling back to the plain-text
// stream when row extraction yields nothing. The library panics on some
// malformed files; that is reported as an error.
func (e *LibraryExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library failed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n"), nil
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// StaticExtractor returns fixed text; tests use it in place of a real PDF.
type StaticExtractor struct {
	Text string
	Err  error
}

func (s *StaticExtractor) ExtractText(context.Context, []byte) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}
