package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// isoLayouts covers the values excelize returns for cells stored with t="d".
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func readXLSX(path string) (*Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, errors.New("workbook has no worksheets")
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", name, err)
	}

	r := &xlsxReader{
		file:       f,
		sheet:      name,
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}

	grid := &Grid{Sheet: name}
	for i, raw := range rows {
		grid.grow(i)
		for j, value := range raw {
			if value == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			grid.set(i, j, r.cell(ref, value))
		}
	}
	return grid, nil
}

type xlsxReader struct {
	file       *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

// cell types the raw value of ref using the stored cell type and number format.
func (r *xlsxReader) cell(ref, raw string) Cell {
	typ, err := r.file.GetCellType(r.sheet, ref)
	if err != nil {
		return Text(raw)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeBool, excelize.CellTypeError:
		return Text(raw)
	case excelize.CellTypeDate:
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return Date(t)
			}
		}
		return Text(raw)
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Text(raw)
	}
	if r.isDateStyled(ref) {
		if t, err := excelize.ExcelDateToTime(num, r.date1904); err == nil {
			return Date(t)
		}
	}
	return Number(num)
}

func (r *xlsxReader) isDateStyled(ref string) bool {
	id, err := r.file.GetCellStyle(r.sheet, ref)
	if err != nil || id == 0 {
		return false
	}
	if known, ok := r.dateStyles[id]; ok {
		return known
	}

	isDate := false
	if style, err := r.file.GetStyle(id); err == nil && style != nil {
		isDate = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	r.dateStyles[id] = isDate
	return isDate
}

// isDateFormat reports whether a number format renders a date.
// Built-in ids follow ECMA-376 18.8.30 plus the common East Asian date ids.
func isDateFormat(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		return hasDateTokens(*custom)
	}
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// hasDateTokens looks for day or year placeholders outside quoted literals,
// bracketed sections and escaped characters.
func hasDateTokens(code string) bool {
	code = strings.ToLower(code)
	inQuote, inBracket, escaped := false, false, false
	for _, ch := range code {
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		case ch == 'd' || ch == 'y':
			return true
		}
	}
	return false
}
