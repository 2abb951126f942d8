package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/sheet"
)

var errNotAmount = errors.New("not an amount")

// parseAmount reads a monetary value rounded half away from zero to cents.
// Text may use any Unicode space, including no-break space, as a thousands
// separator, and a single comma as the decimal separator.
func parseAmount(c sheet.Cell) (float64, error) {
	var d decimal.Decimal

	switch c.Kind {
	case sheet.KindNumber:
		d = decimal.NewFromFloat(c.Number)
	case sheet.KindText:
		s := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, c.Text)
		if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}

		var err error
		d, err = decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errNotAmount, c.Text)
		}
	default:
		return 0, fmt.Errorf("%w: %s cell", errNotAmount, c.Kind)
	}

	return d.Round(2).InexactFloat64(), nil
}

// formatIdentifier renders account numbers and payment references. Whole
// numbers lose the fraction a spreadsheet adds ("123456.0" becomes "123456").
func formatIdentifier(c sheet.Cell) string {
	switch {
	case c.IsEmpty():
		return ""
	case c.IsWholeNumber():
		return strconv.FormatFloat(c.Number, 'f', 0, 64)
	default:
		return strings.TrimSpace(c.String())
	}
}

// normalizeDate renders native dates as YYYY-MM-DD and converts text matching
// one of layouts. Unrecognized text is returned trimmed but otherwise unchanged.
func normalizeDate(c sheet.Cell, layouts []string) string {
	if c.Kind == sheet.KindDate {
		return c.Time.Format(time.DateOnly)
	}

	s := strings.TrimSpace(c.String())
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return s
}
