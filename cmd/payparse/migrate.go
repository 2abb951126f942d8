package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			deps, err := InitDependencies(ctx, a.cfg, a.logger, true)
			if err != nil {
				return err
			}
			defer deps.Cleanup()

			return deps.DB.RunMigrations(ctx)
		},
	}
}
