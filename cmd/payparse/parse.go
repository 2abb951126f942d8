package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/bank"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/parser"
	"github.com/FACorreiaa/payment-reports/internal/domain/import/service"
)

func newParseCommand(a *app) *cobra.Command {
	var bankID string
	var format string
	var showSkipped bool
	var store bool

	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "Print the payment records of one or more reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := outputFor(format)
			if err != nil {
				return err
			}
			return a.runParse(cmd, parseOptions{
				bankID:      bankID,
				paths:       args,
				output:      out,
				showSkipped: showSkipped,
				store:       store,
			})
		},
	}

	cmd.Flags().StringVar(&bankID, "bank", "", "bank identifier, see the banks command (required)")
	_ = cmd.MarkFlagRequired("bank")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json or csv")
	cmd.Flags().BoolVar(&showSkipped, "skipped", false, "list dropped rows on stderr")
	cmd.Flags().BoolVar(&store, "store", false, "save records to the database")

	return cmd
}

type parseOptions struct {
	bankID      string
	paths       []string
	output      output
	showSkipped bool
	store       bool
}

func (a *app) runParse(cmd *cobra.Command, opts parseOptions) error {
	if _, err := bank.DefaultRegistry().Lookup(opts.bankID); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Parse.Timeout)
	defer cancel()

	deps, err := InitDependencies(ctx, a.cfg, a.logger, opts.store)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	items, err := deps.PaymentService.ParseBatch(ctx, opts.bankID, opts.paths)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	records := []parser.PaymentRecord{}
	var failed []error
	for _, item := range items {
		if item.Err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", item.Path, item.Err))
			continue
		}
		res := item.Report.Result
		records = append(records, res.Records...)

		switch {
		case !res.HeaderFound:
			fmt.Fprintf(stderr, "%s: no %s table found\n", item.Path, opts.bankID)
		case !res.ColumnsMapped:
			fmt.Fprintf(stderr, "%s: missing columns %v\n", item.Path, res.MissingColumns)
		}
		if opts.showSkipped {
			for _, s := range res.Skipped {
				fmt.Fprintf(stderr, "%s: %s\n", item.Path, s.Error())
			}
		}

		if opts.store && len(res.Records) > 0 {
			added, err := deps.PaymentStore.SavePayments(ctx, opts.bankID, res.Records)
			if err != nil {
				failed = append(failed, fmt.Errorf("%s: %w", item.Path, err))
				continue
			}
			a.logger.Info("stored payments",
				slog.String("path", item.Path),
				slog.Int("records", len(res.Records)),
				slog.Int("added", added),
			)
		}
	}

	if err := opts.output(cmd.OutOrStdout(), records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	if len(failed) == 0 {
		return nil
	}
	for _, err := range failed {
		fmt.Fprintf(stderr, "%s (%s)\n", err, service.FailureReason(err))
	}
	return fmt.Errorf("%d of %d reports failed", len(failed), len(items))
}
