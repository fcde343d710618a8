package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			d, err := openDeps(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close(ctx) }()

			if err := d.migrate(ctx); err != nil {
				return err
			}
			e.log.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}
