package xlsparser

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"fjacquet/bank-ingest/internal/dateutils"
	"fjacquet/bank-ingest/internal/parser"
)

// Built-in number formats that render dates.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 30: true, 36: true, 45: true, 46: true, 47: true, 50: true, 57: true,
}

func readXLSX(ctx context.Context, data []byte) ([][][]parser.Cell, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dateStyles := map[int]bool{}
	var sheets [][][]parser.Cell
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		rows := make([][]parser.Cell, len(raw))
		for r, values := range raw {
			rows[r] = make([]parser.Cell, len(values))
			for c, v := range values {
				rows[r][c] = xlsxCell(f, name, r, c, v, dateStyles)
			}
		}
		sheets = append(sheets, rows)
	}
	return sheets, nil
}

func xlsxCell(f *excelize.File, sheet string, r, c int, v string, dateStyles map[int]bool) parser.Cell {
	v = strings.TrimSpace(v)
	if v == "" {
		return parser.TextCell("")
	}
	t, isSerial := dateutils.FromExcelSerial(v)
	if !isSerial {
		return parser.TextCell(v)
	}
	axis, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return parser.TextCell(v)
	}
	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil {
		return parser.TextCell(v)
	}
	isDate, seen := dateStyles[styleID]
	if !seen {
		isDate = isDateStyle(f, styleID)
		dateStyles[styleID] = isDate
	}
	if isDate {
		return parser.DateCell(t)
	}
	return parser.TextCell(v)
}

func isDateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if builtinDateFormats[style.NumFmt] {
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	format := strings.ToLower(*style.CustomNumFmt)
	return strings.Contains(format, "yy") || (strings.Contains(format, "d") && strings.Contains(format, "m"))
}
