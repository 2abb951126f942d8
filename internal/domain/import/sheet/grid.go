// Package sheet normalizes spreadsheet files into a single in-memory grid.
// It understands zipped workbooks (.xlsx), legacy binary workbooks (.xls) and the
// XML Spreadsheet 2003 dialect, and only ever reads the first worksheet.
package sheet

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a Cell holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Format identifies the encoding a grid was decoded from.
type Format string

const (
	FormatXLSX  Format = "xlsx"
	FormatXLS   Format = "xls"
	FormatXMLSS Format = "xml-spreadsheet"
)

// Cell is a single typed spreadsheet value.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Time   time.Time
}

// Text returns a text cell, or an empty cell when s is empty.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: KindText, Text: s}
}

// Number returns a numeric cell.
func Number(f float64) Cell {
	return Cell{Kind: KindNumber, Number: f}
}

// Date returns a date/time cell.
func Date(t time.Time) Cell {
	return Cell{Kind: KindDate, Time: t}
}

// IsEmpty reports whether the cell is absent or holds only whitespace.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case KindEmpty:
		return true
	case KindText:
		return strings.TrimSpace(c.Text) == ""
	default:
		return false
	}
}

// IsWholeNumber reports whether the cell is a number without a fractional part.
func (c Cell) IsWholeNumber() bool {
	return c.Kind == KindNumber && !math.IsInf(c.Number, 0) && c.Number == math.Trunc(c.Number)
}

// String renders the cell the way it would be shown as plain text.
// Numbers use the shortest exact representation; dates render as ISO-8601.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format(time.DateOnly)
		}
		return c.Time.Format(time.DateTime)
	default:
		return ""
	}
}

// Row is an ordered, possibly short, sequence of cells.
type Row []Cell

// At returns the cell at column i, or an empty cell when the row is too short.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// IsEmpty reports whether every cell in the row is empty.
func (r Row) IsEmpty() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Grid is the normalized content of a worksheet. Rows may be ragged.
type Grid struct {
	Format Format
	Sheet  string
	Rows   []Row
}

// Len returns the number of rows.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Rows)
}

// Row returns row i, or nil when out of range.
func (g *Grid) Row(i int) Row {
	if g == nil || i < 0 || i >= len(g.Rows) {
		return nil
	}
	return g.Rows[i]
}

// grow makes sure row index row exists.
func (g *Grid) grow(row int) {
	for len(g.Rows) <= row {
		g.Rows = append(g.Rows, nil)
	}
}

// set places c at (row, col), growing the grid as needed.
func (g *Grid) set(row, col int, c Cell) {
	g.grow(row)
	r := g.Rows[row]
	for len(r) <= col {
		r = append(r, Cell{})
	}
	r[col] = c
	g.Rows[row] = r
}
