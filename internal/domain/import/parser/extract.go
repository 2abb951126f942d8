package parser

import (
	"github.com/FACorreiaa/payment-reports/internal/domain/import/bank"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/sheet"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/sniffer"
)

// ExtractRows coerces every data row below headerIdx into a PaymentRecord.
// Extraction ends at the first row whose leading cell matches a stop pattern;
// rows lacking required values or carrying malformed amounts are skipped.
// An empty column map (required columns not found) yields no records.
func ExtractRows(grid *sheet.Grid, headerIdx int, cols sniffer.ColumnMap, profile *bank.Profile) *Result {
	res := newResult()
	res.HeaderFound = headerIdx >= 0 && headerIdx < grid.Len()
	if !res.HeaderFound {
		return res
	}
	res.HeaderRow = headerIdx
	res.Columns = cols
	res.Fingerprint = sniffer.Fingerprint(grid.Row(headerIdx))

	if missing := cols.Missing(profile.RequiredFields()); len(missing) > 0 {
		res.MissingColumns = missing
		return res
	}
	res.ColumnsMapped = true

	var docDate string
	docDateFound := true
	if profile.DocumentDate != nil {
		res.DocumentDate, docDateFound = sniffer.FindDocumentDate(grid, profile.DocumentDate)
		if docDateFound {
			docDate = normalizeDate(sheet.Text(res.DocumentDate), []string{profile.DocumentDate.Layout})
		}
	}

	x := extractor{profile: profile, cols: cols, res: res}
	for i := headerIdx + 1; i < grid.Len(); i++ {
		row := grid.Row(i)
		if row.IsEmpty() {
			continue
		}
		if first := sniffer.Label(row.At(0)); first != "" && bank.MatchAny(profile.Stop, first) {
			res.StoppedAt = i
			break
		}
		res.TotalRows++

		rec, ok := x.record(i, row)
		if !ok {
			continue
		}
		if profile.DocumentDate != nil {
			if !docDateFound {
				x.skip(i, bank.FieldDate, ReasonNoDocumentDate, "")
				continue
			}
			rec.Date = docDate
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

type extractor struct {
	profile *bank.Profile
	cols    sniffer.ColumnMap
	res     *Result
}

func (x *extractor) cell(row sheet.Row, f bank.Field) sheet.Cell {
	i, ok := x.cols.Index(f)
	if !ok {
		return sheet.Cell{}
	}
	return row.At(i)
}

func (x *extractor) skip(i int, f bank.Field, reason, raw string) {
	x.res.Skipped = append(x.res.Skipped, SkippedRow{
		Row:     i + 1,
		Field:   f,
		Reason:  reason,
		RawData: raw,
	})
}

// record coerces one non-empty data row. The date is left empty for profiles
// dated by the document; the caller fills it in.
func (x *extractor) record(i int, row sheet.Row) (PaymentRecord, bool) {
	account := x.cell(row, bank.FieldAccount)
	amount := x.cell(row, bank.FieldAmount)

	if account.IsEmpty() {
		x.skip(i, bank.FieldAccount, ReasonMissingValue, "")
		return PaymentRecord{}, false
	}
	if amount.IsEmpty() {
		x.skip(i, bank.FieldAmount, ReasonMissingValue, "")
		return PaymentRecord{}, false
	}

	var date sheet.Cell
	if x.profile.DocumentDate == nil {
		date = x.cell(row, bank.FieldDate)
		if date.IsEmpty() {
			x.skip(i, bank.FieldDate, ReasonMissingValue, "")
			return PaymentRecord{}, false
		}
	}

	if raw := sniffer.Label(amount); bank.MatchAny(x.profile.AmountSkip, raw) {
		x.skip(i, bank.FieldAmount, ReasonSummaryRow, raw)
		return PaymentRecord{}, false
	}

	value, err := parseAmount(amount)
	if err != nil {
		x.skip(i, bank.FieldAmount, ReasonInvalidAmount, amount.String())
		return PaymentRecord{}, false
	}

	rec := PaymentRecord{
		Account:   formatIdentifier(account),
		Amount:    value,
		PaymentID: formatIdentifier(x.cell(row, bank.FieldPaymentID)),
	}
	if x.profile.DocumentDate == nil {
		rec.Date = normalizeDate(date, x.profile.DateLayouts)
	}
	return rec, true
}
