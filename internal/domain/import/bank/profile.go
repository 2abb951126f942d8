// Package bank holds the per-bank report layouts. Each layout is plain data
// consumed by a single extraction engine, so supporting another bank only
// means registering another Profile.
package bank

// Field is a semantic column of a payment report.
type Field string

const (
	FieldDate      Field = "date"
	FieldAccount   Field = "account"
	FieldAmount    Field = "amount"
	FieldPaymentID Field = "payment_id"
)

// CellCondition requires the header cell at Column to match Pattern.
type CellCondition struct {
	Column  int
	Pattern Pattern
}

// FieldPattern assigns Field to the first header cell matching Pattern.
type FieldPattern struct {
	Field   Field
	Pattern Pattern
}

// DocumentDate describes a report-wide date printed above the table,
// e.g. "Отчет на дату: 05.03.2024".
type DocumentDate struct {
	Label   string // searched in column 0, case-sensitive
	MaxRows int    // how many leading rows to scan
	Layout  string // time.Parse layout of the text after the label
}

// Profile is the immutable description of one bank's report layout.
type Profile struct {
	ID   string // sender identifier, matched exactly
	Name string

	// Header is a conjunction: every condition must hold for a row to be the header.
	Header []CellCondition

	// Columns are evaluated in order for every header cell.
	Columns []FieldPattern

	// Stop ends extraction when the first cell of a row matches.
	Stop []Pattern

	// AmountSkip drops a row whose amount text matches without ending extraction.
	AmountSkip []Pattern

	// DateLayouts convert textual dates to ISO; unmatched text is kept as is.
	DateLayouts []string

	// DocumentDate, when set, supplies the date of every record.
	DocumentDate *DocumentDate
}

// RequiredFields lists the columns a header must provide.
// The date column is optional when the date comes from the document.
func (p *Profile) RequiredFields() []Field {
	if p.DocumentDate != nil {
		return []Field{FieldAccount, FieldAmount}
	}
	return []Field{FieldDate, FieldAccount, FieldAmount}
}
