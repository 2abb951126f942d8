package sheet

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

// XML Spreadsheet 2003 documents. Tags are matched by local name so both the
// ss: prefixed and default-namespace spellings decode.
type xmlssWorkbook struct {
	Worksheets []xmlssWorksheet `xml:"Worksheet"`
}

type xmlssWorksheet struct {
	Name  string      `xml:"Name,attr"`
	Table *xmlssTable `xml:"Table"`
}

type xmlssTable struct {
	Rows []xmlssRow `xml:"Row"`
}

type xmlssRow struct {
	Index int         `xml:"Index,attr"`
	Cells []xmlssCell `xml:"Cell"`
}

type xmlssCell struct {
	Index       int        `xml:"Index,attr"`
	MergeAcross int        `xml:"MergeAcross,attr"`
	Data        *xmlssData `xml:"Data"`
}

type xmlssData struct {
	Type  string `xml:"Type,attr"`
	Value string `xml:",chardata"`
}

var xmlssDateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.DateOnly,
}

func readXMLSS(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if bom, _ := br.Peek(len(utf8BOM)); bytes.Equal(bom, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	dec := xml.NewDecoder(br)
	dec.CharsetReader = charsetReader

	var wb xmlssWorkbook
	if err := dec.Decode(&wb); err != nil {
		return nil, err
	}
	if len(wb.Worksheets) == 0 {
		return nil, errors.New("document has no Worksheet element")
	}

	ws := wb.Worksheets[0]
	if ws.Table == nil {
		return nil, errors.New("first worksheet has no Table element")
	}

	grid := &Grid{Sheet: ws.Name}
	row := 0
	for _, r := range ws.Table.Rows {
		if r.Index > 0 {
			row = r.Index - 1
		}
		grid.grow(row)

		col := 0
		for _, c := range r.Cells {
			if c.Index > 0 {
				col = c.Index - 1
			}
			if c.Data != nil {
				if cell := xmlssValue(c.Data); cell.Kind != KindEmpty {
					grid.set(row, col, cell)
				}
			}
			col += 1 + max(c.MergeAcross, 0)
		}
		row++
	}
	return grid, nil
}

func xmlssValue(d *xmlssData) Cell {
	switch d.Type {
	case "Number":
		if f, err := strconv.ParseFloat(strings.TrimSpace(d.Value), 64); err == nil {
			return Number(f)
		}
	case "DateTime":
		v := strings.TrimSpace(d.Value)
		for _, layout := range xmlssDateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return Date(t)
			}
		}
	}
	return Text(d.Value)
}

// charsetReader lets documents declare legacy encodings such as windows-1251.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(input), nil
}
