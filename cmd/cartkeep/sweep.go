package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/job"
)

var errAsyncNeedsPostgres = errors.New("sweep --async requires the postgres driver")

// sweepDedupWindow collapses repeated --async invocations into one job.
const sweepDedupWindow = time.Minute

func newSweepCmd(e *env) *cobra.Command {
	var async bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired carts and clear the cart cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			d, err := openDeps(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close(ctx) }()

			sweeper := cart.NewSweeper(d.repo, cart.WithSweepLogger(e.log))
			if !async {
				return sweeper.Handle(ctx)
			}

			if d.pool == nil {
				return errAsyncNeedsPostgres
			}
			m, err := job.NewManager(d.pool, job.WithScheduledTask(sweeper), job.WithLogger(e.log))
			if err != nil {
				return err
			}
			if err := m.Enqueue(ctx, sweeper.Name(), job.UniqueFor(sweepDedupWindow, "cli")); err != nil {
				return err
			}
			e.log.InfoContext(ctx, "cart sweep enqueued")
			return nil
		},
	}
	cmd.Flags().BoolVar(&async, "async", false, "enqueue the sweep for the job workers instead of running it here")
	return cmd
}
