// Package parser turns a located report table into payment records.
// Extraction is best effort: rows that cannot be coerced are dropped and
// reported through Result.Skipped, never as an error.
package parser

import (
	"fmt"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/bank"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/sheet"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/sniffer"
)

// PaymentRecord is one normalized payment.
type PaymentRecord struct {
	Date      string  `json:"date" csv:"date"` // YYYY-MM-DD when recognized, otherwise as printed
	Account   string  `json:"account" csv:"account"`
	Amount    float64 `json:"amount" csv:"amount"` // rounded to two decimals
	PaymentID string  `json:"payment_id" csv:"payment_id"`
}

// Reasons a data row was dropped.
const (
	ReasonMissingValue   = "missing value"
	ReasonSummaryRow     = "summary row"
	ReasonInvalidAmount  = "invalid amount"
	ReasonNoDocumentDate = "document date not found"
)

// SkippedRow describes a dropped data row.
type SkippedRow struct {
	Row     int // 1-based, as shown by spreadsheet applications
	Field   bank.Field
	Reason  string
	RawData string
}

func (s SkippedRow) Error() string {
	if s.RawData != "" {
		return fmt.Sprintf("row %d, %s: %s (%q)", s.Row, s.Field, s.Reason, s.RawData)
	}
	return fmt.Sprintf("row %d, %s: %s", s.Row, s.Field, s.Reason)
}

// Result holds the records of one report plus what happened along the way.
type Result struct {
	Records []PaymentRecord
	Skipped []SkippedRow

	HeaderFound    bool
	HeaderRow      int // 0-based grid index, -1 when not found
	ColumnsMapped  bool
	MissingColumns []bank.Field
	Columns        sniffer.ColumnMap
	Fingerprint    string // header layout hash

	DocumentDate string // raw text, only for profiles dated by the document
	StoppedAt    int    // 0-based grid index of the totals row, -1 when none
	TotalRows    int    // non-empty data rows examined
}

// Stats summarizes a Result.
type Stats struct {
	TotalRows   int
	ParsedRows  int
	SkippedRows int
}

func (r *Result) Stats() Stats {
	return Stats{
		TotalRows:   r.TotalRows,
		ParsedRows:  len(r.Records),
		SkippedRows: len(r.Skipped),
	}
}

func newResult() *Result {
	return &Result{
		Records:   []PaymentRecord{},
		HeaderRow: -1,
		StoppedAt: -1,
	}
}

// Parse runs the whole extraction for one grid: header location, column
// mapping and row coercion. A missing header or required column yields a
// Result without records.
func Parse(grid *sheet.Grid, profile *bank.Profile) *Result {
	headerIdx, ok := sniffer.LocateHeader(grid, profile.Header)
	if !ok {
		return newResult()
	}

	header := grid.Row(headerIdx)
	matched := sniffer.Match(header, profile.Columns)
	if missing := matched.Missing(profile.RequiredFields()); len(missing) > 0 {
		res := newResult()
		res.HeaderFound = true
		res.HeaderRow = headerIdx
		res.MissingColumns = missing
		res.Fingerprint = sniffer.Fingerprint(header)
		return res
	}

	return ExtractRows(grid, headerIdx, matched, profile)
}
