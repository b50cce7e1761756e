package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/phrazzld/imagine/internal/platform/postgres"
	"github.com/phrazzld/imagine/internal/queue"
	"github.com/spf13/cobra"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the work queue",
	}

	queueCmd.AddCommand(&cobra.Command{
		Use:   "stats [queue-name]",
		Short: "Show visible, leased and archived message counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			name := cfg.Queue.Name
			if len(args) == 1 {
				name = args[0]
			}

			db, err := openDatabase(cmd.Context(), cfg.QueueURL(), log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			stats, err := postgres.NewPostgresWorkQueue(db, log).Stats(cmd.Context(), name)
			if err != nil {
				return err
			}

			printStats(cmd.OutOrStdout(), stats, time.Now())
			return nil
		},
	})

	return queueCmd
}

func printStats(w io.Writer, stats queue.Stats, now time.Time) {
	oldest := "-"
	if stats.OldestVisible != nil {
		oldest = now.Sub(*stats.OldestVisible).Truncate(time.Second).String()
	}

	headers := []string{"Queue", "Visible", "Leased", "Archived", "Oldest Visible"}
	rows := [][]string{{
		stats.QueueName,
		strconv.FormatInt(stats.Visible, 10),
		strconv.FormatInt(stats.Leased, 10),
		strconv.FormatInt(stats.Archived, 10),
		oldest,
	}}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}

	fmt.Fprintln(w, renderTable(headers, rows, aligns))
}
