package sheet

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/extrame/xls"
)

func readXLS(path string) (grid *Grid, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// The BIFF decoder panics on some truncated streams.
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, fmt.Errorf("decoding workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("workbook has no worksheets")
	}

	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, errors.New("could not read first worksheet")
	}

	grid = &Grid{Sheet: ws.Name}
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			continue
		}
		grid.grow(i)
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			if c := xlsCell(row.Col(j)); c.Kind != KindEmpty {
				grid.set(i, j, c)
			}
		}
	}
	return grid, nil
}

// xlsCell types a value rendered by the BIFF decoder, which exposes every cell
// as a string: dates come out as RFC 3339, numbers in shortest decimal form.
func xlsCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date(t)
	}
	if isDecimalLiteral(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Number(f)
		}
	}
	return Text(s)
}

// isDecimalLiteral accepts what strconv.FormatFloat emits and nothing else,
// so codes with leading zeros and words like "Inf" stay text.
func isDecimalLiteral(s string) bool {
	i := 0
	if s[0] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	if s[i] == '0' && i+1 < len(s) && s[i+1] != '.' && s[i+1] != 'e' {
		return false
	}

	digits, dot, exp := 0, false, false
	for ; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			digits++
		case ch == '.' && !dot && !exp:
			dot = true
		case (ch == 'e' || ch == 'E') && !exp && digits > 0:
			exp = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
			digits = 0
		default:
			return false
		}
	}
	return digits > 0
}
