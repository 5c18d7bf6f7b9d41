package xlsparser

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"

	"fjacquet/bank-ingest/internal/institution"
	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/textutils"
)

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	lower := bytes.ToLower(textutils.StripBOM(head))
	lower = bytes.TrimSpace(lower)
	return bytes.HasPrefix(lower, []byte("<html")) || bytes.HasPrefix(lower, []byte("<!doctype html")) ||
		bytes.Contains(lower, []byte("<table"))
}

// readHTML reads every <table> as one sheet. Cell text is whitespace
// collapsed; nested tables are flattened into their own sheets.
func readHTML(ctx context.Context, data []byte) ([][][]parser.Cell, error) {
	doc, err := html.Parse(strings.NewReader(institution.DecodeAuto(data)))
	if err != nil {
		return nil, err
	}

	var sheets [][][]parser.Cell
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if ctx.Err() != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "table" {
			if rows := tableRows(n); len(rows) > 0 {
				sheets = append(sheets, rows)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sheets, nil
}

func tableRows(table *html.Node) [][]parser.Cell {
	var rows [][]parser.Cell
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "table":
				// nested tables are read on their own
			case "tr":
				rows = append(rows, rowCells(c))
			default:
				visit(c)
			}
		}
	}
	visit(table)
	return rows
}

func rowCells(tr *html.Node) []parser.Cell {
	var cells []parser.Cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, parser.TextCell(textutils.CollapseSpaces(nodeText(c))))
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}
