package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fr0stylo/lacquer/internal/adapters/sqlite"
	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/app/services"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the dispatch queue",
	}

	queueCmd.AddCommand(newQueueStatsCommand(ctx))
	queueCmd.AddCommand(newQueuePurgeCommand(ctx))

	return queueCmd
}

func newQueueStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue depth, leases and dead letters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobs(func(jobs *services.JobService, _ *sqlite.Store) error {
				stats, err := jobs.QueueStats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Queue", "Total", "Visible", "Leased", "Dead letters"},
					buildQueueStatsRows(stats),
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}

func buildQueueStatsRows(stats ports.QueueStats) [][]string {
	return [][]string{{
		stats.Queue,
		strconv.FormatInt(stats.Total, 10),
		strconv.FormatInt(stats.Visible, 10),
		strconv.FormatInt(stats.Leased, 10),
		strconv.FormatInt(stats.DeadLetters, 10),
	}}
}

func newQueuePurgeCommand(ctx *commandContext) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Drop every pending message; job rows are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to purge without --yes")
			}
			return ctx.withJobs(func(jobs *services.JobService, _ *sqlite.Store) error {
				purged, err := jobs.PurgeQueue(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"queue": jobs.QueueName(), "purged": purged})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d message(s) from %s\n", purged, jobs.QueueName())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the purge")
	return cmd
}
