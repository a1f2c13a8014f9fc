package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/max-chem-eng/spanlog"
)

type burstOptions struct {
	workers int
	records int
}

func newBurstCmd(configPath *string) *cobra.Command {
	opts := burstOptions{}

	cmd := &cobra.Command{
		Use:   "burst",
		Short: "Emit records from concurrent goroutines and drain them on exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.workers < 1 || opts.records < 0 {
				return fmt.Errorf("workers must be positive and records non-negative")
			}
			return withLogging(*configPath, func(ctx context.Context) error {
				return runBurst(ctx, opts)
			})
		},
	}
	cmd.Flags().IntVar(&opts.workers, "workers", 8, "concurrent emitting goroutines")
	cmd.Flags().IntVar(&opts.records, "records", 1000, "total records to emit")
	return cmd
}

func runBurst(ctx context.Context, opts burstOptions) error {
	g, ctx := errgroup.WithContext(ctx)
	per := opts.records / opts.workers
	extra := opts.records % opts.workers

	for w := 0; w < opts.workers; w++ {
		n := per
		if w < extra {
			n++
		}
		g.Go(func() error {
			ctx, span := spanlog.Enter(ctx, fmt.Sprintf("worker-%d", w))
			defer span.Exit()
			for i := 0; i < n; i++ {
				spanlog.Info(ctx, "burst record", spanlog.Int("worker", w), spanlog.Int("seq", i))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if w := spanlog.Default().Writer(); w != nil && w.Dropped() > 0 {
		spanlog.Warn(ctx, "records dropped under burst", spanlog.Uint64("dropped", w.Dropped()))
	}
	return nil
}
