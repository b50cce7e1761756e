package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/phrazzld/imagine/internal/task"
	"github.com/spf13/cobra"
)

func newCollectCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetch catalog images on a schedule and enqueue generation requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var schedule task.Schedule
			if !once {
				schedule, err = task.ParseSchedule(cfg.Collector.Schedule)
				if err != nil {
					return err
				}
			}

			lock := flock.New(collectorLockPath(cfg.Collector.LockFile))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire collector lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another collector holds %s", lock.Path())
			}
			defer func() { _ = lock.Unlock() }()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(runCtx, cfg, log)
			if err != nil {
				return err
			}
			defer app.cleanup()

			fetcher, err := app.catalogClient()
			if err != nil {
				return err
			}
			collector, err := task.NewCollector(fetcher, app.inspirationStore(), app.workQueue(), cfg.Queue.Name, log)
			if err != nil {
				return err
			}

			if once {
				result, err := collector.Collect(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, stored %d, enqueued %d, skipped %d, failed %d\n",
					result.Fetched, result.Stored, result.Enqueued, result.Skipped, result.Failed)
				return nil
			}

			scheduler, err := task.NewScheduler(schedule, func(ctx context.Context) {
				// Errors are logged by the collector; the next tick tries again.
				_, _ = collector.Collect(ctx)
			}, log)
			if err != nil {
				return err
			}
			return scheduler.Run(runCtx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single collection and exit")
	return cmd
}

func collectorLockPath(configured string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(os.TempDir(), "imagine-collector.lock")
}
