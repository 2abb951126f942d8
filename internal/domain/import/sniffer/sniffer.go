// Package sniffer locates the payment table inside a report grid.
// It finds the header row, the report-wide document date and the column of
// every payment field, driven entirely by a bank.Profile.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/bank"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/sheet"
)

// Label renders a cell the way header and marker comparisons see it:
// stringified, trimmed and NFC-normalized.
func Label(c sheet.Cell) string {
	return norm.NFC.String(strings.TrimSpace(c.String()))
}

// LocateHeader returns the index of the first row satisfying every condition
// of the signature, scanning top to bottom. It returns -1, false when no row does.
func LocateHeader(grid *sheet.Grid, signature []bank.CellCondition) (int, bool) {
	if len(signature) == 0 {
		return -1, false
	}
	for i := 0; i < grid.Len(); i++ {
		if matchesSignature(grid.Row(i), signature) {
			return i, true
		}
	}
	return -1, false
}

func matchesSignature(row sheet.Row, signature []bank.CellCondition) bool {
	for _, cond := range signature {
		cell := row.At(cond.Column)
		if cell.IsEmpty() || !cond.Pattern.Match(Label(cell)) {
			return false
		}
	}
	return true
}

// FindDocumentDate looks for the document date label in the first column of the
// leading rows and returns the raw text that follows it. When the label ends the
// cell, the next non-empty cell of the same row holds the date.
func FindDocumentDate(grid *sheet.Grid, dd *bank.DocumentDate) (string, bool) {
	if dd == nil || dd.Label == "" {
		return "", false
	}

	limit := min(dd.MaxRows, grid.Len())
	for i := 0; i < limit; i++ {
		row := grid.Row(i)
		text := Label(row.At(0))
		idx := strings.Index(text, dd.Label)
		if idx < 0 {
			continue
		}

		if rest := strings.TrimSpace(text[idx+len(dd.Label):]); rest != "" {
			return rest, true
		}
		for j := 1; j < len(row); j++ {
			if !row[j].IsEmpty() {
				return Label(row[j]), true
			}
		}
		return "", false
	}
	return "", false
}

// ColumnMap maps each recognized field to its zero-based column index.
type ColumnMap map[bank.Field]int

// Index returns the column of f.
func (m ColumnMap) Index(f bank.Field) (int, bool) {
	i, ok := m[f]
	return i, ok
}

// Missing lists the required fields the map does not cover.
func (m ColumnMap) Missing(required []bank.Field) []bank.Field {
	var missing []bank.Field
	for _, f := range required {
		if _, ok := m[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Match assigns fields to header columns. For each header cell the patterns are
// tried in order; the first one whose field is still unassigned claims the
// cell, and later cells never override an assignment.
func Match(header sheet.Row, patterns []bank.FieldPattern) ColumnMap {
	cols := make(ColumnMap, len(patterns))
	for i, cell := range header {
		if cell.IsEmpty() {
			continue
		}
		label := Label(cell)
		for _, fp := range patterns {
			if _, taken := cols[fp.Field]; taken {
				continue
			}
			if fp.Pattern.Match(label) {
				cols[fp.Field] = i
				break
			}
		}
	}
	return cols
}

// MapColumns is Match followed by a completeness check: it returns an empty map
// unless every required field was found.
func MapColumns(header sheet.Row, patterns []bank.FieldPattern, required []bank.Field) ColumnMap {
	cols := Match(header, patterns)
	if len(cols.Missing(required)) > 0 {
		return ColumnMap{}
	}
	return cols
}

// Fingerprint hashes the normalized header labels. Two reports with the same
// fingerprint share a layout, which makes layout drift visible in logs.
func Fingerprint(header sheet.Row) string {
	var normalized []string
	for _, c := range header {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, Label(c))
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
