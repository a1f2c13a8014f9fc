package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/max-chem-eng/spanlog"
)

func newDemoCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Emit a start event and a nested span scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLogging(*configPath, runDemo)
		},
	}
}

func runDemo(ctx context.Context) error {
	spanlog.Info(ctx, "Start main process...")

	ctx, outer := spanlog.Enter(ctx, "outer", spanlog.String("stage", "load"))
	defer outer.Exit()

	spanlog.Debug(ctx, "resolving weights", spanlog.String("repo", "bert-base-uncased"))

	inner := func(ctx context.Context) {
		ctx, span := spanlog.Enter(ctx, "inner")
		defer span.Exit()

		spanlog.Warn(ctx, "falling back to cpu", spanlog.Bool("cuda", false))
		spanlog.Error(ctx, "inference step failed",
			spanlog.Err(errors.New("shape mismatch")),
			spanlog.Any("shape", []int{1, 128, 768}),
		)
	}
	inner(ctx)

	spanlog.Info(ctx, "done")
	return nil
}
