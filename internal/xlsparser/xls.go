package xlsparser

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/extrame/xls"

	"fjacquet/bank-ingest/internal/parser"
)

// Legacy workbooks render date cells as RFC 3339 timestamps.
func readXLS(ctx context.Context, data []byte) ([][][]parser.Cell, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}

	var sheets [][][]parser.Cell
	for s := 0; s < wb.NumSheets(); s++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet := wb.GetSheet(s)
		if sheet == nil {
			continue
		}
		var rows [][]parser.Cell
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]parser.Cell, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, xlsCell(row.Col(c)))
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, rows)
	}
	return sheets, nil
}

func xlsCell(v string) parser.Cell {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return parser.DateCell(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	}
	return parser.TextCell(v)
}
