package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/parser"
	"github.com/FACorreiaa/payment-reports/pkg/money"
)

type output func(w io.Writer, records []parser.PaymentRecord) error

func outputFor(format string) (output, error) {
	switch format {
	case "table":
		return writeTable, nil
	case "json":
		return writeJSON, nil
	case "csv":
		return writeCSV, nil
	default:
		return nil, fmt.Errorf("unknown format %q, want table, json or csv", format)
	}
}

func writeJSON(w io.Writer, records []parser.PaymentRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeCSV(w io.Writer, records []parser.PaymentRecord) error {
	return gocsv.Marshal(records, w)
}

func writeTable(w io.Writer, records []parser.PaymentRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tACCOUNT\tAMOUNT\tPAYMENT ID\t")

	amounts := make([]float64, len(records))
	for i, r := range records {
		amounts[i] = r.Amount
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			r.Date, r.Account, money.NewFromFloat(r.Amount, money.KZT).String(), r.PaymentID)
	}

	total := money.Sum(amounts, money.KZT)
	fmt.Fprintf(tw, "\t%d payments\t%s\t\t\n", len(records), total.String())
	return tw.Flush()
}
