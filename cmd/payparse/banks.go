package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/bank"
)

func newBanksCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List the supported bank report layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOLUMNS")
			for _, p := range bank.DefaultRegistry().Profiles() {
				fields := make([]string, 0, len(p.RequiredFields()))
				for _, f := range p.RequiredFields() {
					fields = append(fields, string(f))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, strings.Join(fields, ", "))
			}
			return tw.Flush()
		},
	}
}
