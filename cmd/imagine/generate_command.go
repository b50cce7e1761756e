package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/imagine/internal/task"
	"github.com/spf13/cobra"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Consume generation requests and publish generated images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(runCtx, cfg, log)
			if err != nil {
				return err
			}
			defer app.cleanup()

			generator, err := newGenerator(runCtx, cfg.Generation, log)
			if err != nil {
				return err
			}
			uploader, err := app.uploader(runCtx)
			if err != nil {
				return err
			}

			worker, err := task.NewGenerationWorker(
				app.workQueue(),
				app.inspirationStore(),
				app.generatedStore(),
				generator,
				uploader,
				workerConfig(cfg.Queue),
				log,
			)
			if err != nil {
				return err
			}

			if once {
				processed, err := worker.ProcessNext(runCtx)
				if err != nil {
					return err
				}
				if !processed {
					fmt.Fprintln(cmd.OutOrStdout(), "queue empty")
				}
				return nil
			}

			return worker.Run(runCtx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Process at most one request and exit")
	return cmd
}
