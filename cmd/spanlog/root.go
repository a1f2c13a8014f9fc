package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/max-chem-eng/spanlog"
)

// shutdownTimeout bounds the final drain of the file writer.
const shutdownTimeout = 5 * time.Second

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "spanlog",
		Short:         "Exercise the dual console/file logging pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML logging config file")

	root.AddCommand(newDemoCmd(&configPath), newBurstCmd(&configPath))
	return root
}

// withLogging installs the process-wide logger, runs fn and drains the writer.
// A logger that cannot be installed is fatal to the command.
func withLogging(configPath string, fn func(ctx context.Context) error) error {
	cfg, err := spanlog.LoadConfig(configPath)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	h, err := spanlog.Initialize(opts...)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	runErr := fn(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("flushing logs: %w", err)
	}
	return runErr
}
