package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fr0stylo/lacquer/internal/adapters/sqlite"
	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/services"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage ingestion jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsRunCommand(ctx))
	jobsCmd.AddCommand(newJobsCancelCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobs(func(jobs *services.JobService, _ *sqlite.Store) error {
				list, err := jobs.ListJobs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, list)
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Source", "Status", "Stage", "Processed", "Inserted", "Created"},
					buildJobRows(list),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of jobs")
	return cmd
}

func buildJobRows(jobs []domain.IngestionJob) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.ID,
			string(job.Source),
			string(job.Status),
			job.Metrics.Pipeline.Stage,
			strconv.FormatInt(job.Metrics.Processed, 10),
			strconv.FormatInt(job.Metrics.Inserted, 10),
			job.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var logs int
	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job with counters and recent log lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobs(func(jobs *services.JobService, _ *sqlite.Store) error {
				job, err := jobs.GetJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, job)
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderTable([]string{"Field", "Value"}, buildJobDetailRows(job), nil))
				if counters := buildCounterRows(job.Metrics.Connector); len(counters) > 0 {
					fmt.Fprint(out, renderTable([]string{"Connector counter", "Value"}, counters, []columnAlignment{alignLeft, alignRight}))
				}
				entries := job.Metrics.Logs
				if logs >= 0 && len(entries) > logs {
					entries = entries[len(entries)-logs:]
				}
				for _, entry := range entries {
					fmt.Fprintf(out, "%4d %s %-5s %s%s\n", entry.Seq, entry.At.Local().Format(time.TimeOnly), strings.ToUpper(entry.Level), entry.Message, formatAttrs(entry.Attrs))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&logs, "logs", 20, "Number of trailing log lines to print")
	return cmd
}

func buildJobDetailRows(job domain.IngestionJob) [][]string {
	m := job.Metrics
	rows := [][]string{
		{"ID", job.ID},
		{"Source", string(job.Source)},
		{"Status", string(job.Status)},
		{"Stage", m.Pipeline.Stage},
		{"Requested by", strconv.FormatInt(job.RequestedBy, 10)},
		{"Pages", strconv.FormatInt(m.Pages, 10)},
		{"Processed", strconv.FormatInt(m.Processed, 10)},
		{"Inserted / updated / skipped", fmt.Sprintf("%d / %d / %d", m.Inserted, m.Updated, m.Skipped)},
		{"Materialized", strconv.FormatInt(m.Materialized, 10)},
		{"Hex detected / preserved", fmt.Sprintf("%d / %d", m.HexDetected, m.HexPreserved)},
		{"Created", job.CreatedAt.Local().Format(time.DateTime)},
	}
	if job.StartedAt != nil {
		rows = append(rows, []string{"Started", job.StartedAt.Local().Format(time.DateTime)})
	}
	if job.FinishedAt != nil {
		rows = append(rows, []string{"Finished", job.FinishedAt.Local().Format(time.DateTime)})
	}
	if job.Error != "" {
		rows = append(rows, []string{"Error", job.Error})
	}
	if job.CancelReason != "" {
		rows = append(rows, []string{"Cancel reason", job.CancelReason})
	}
	if m.LogsDropped > 0 {
		rows = append(rows, []string{"Logs dropped", strconv.FormatInt(m.LogsDropped, 10)})
	}
	return rows
}

func buildCounterRows(counters map[string]int64) [][]string {
	keys := make([]string, 0, len(counters))
	for key := range counters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, strconv.FormatInt(counters[key], 10)})
	}
	return rows
}

func formatAttrs(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%s", key, attrs[key])
	}
	return b.String()
}

func newJobsRunCommand(ctx *commandContext) *cobra.Command {
	var (
		userID  int64
		request domain.JobRequest
		source  string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Queue an ingestion job",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user is required")
			}
			request.Source = domain.IngestionSource(source)
			return ctx.withJobs(func(jobs *services.JobService, _ *sqlite.Store) error {
				job, err := jobs.RunJob(cmd.Context(), userID, request)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, job)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s on %s\n", job.ID, jobs.QueueName())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", string(domain.SourceManualFeed), "Connector source")
	cmd.Flags().Int64Var(&userID, "user", 0, "User id the job runs on behalf of")
	cmd.Flags().IntVar(&request.Page, "page", 1, "First page to fetch")
	cmd.Flags().IntVar(&request.PageSize, "page-size", domain.DefaultPageSize, "Records per page")
	cmd.Flags().IntVar(&request.MaxRecords, "max-records", domain.DefaultMaxRecords, "Stop after this many records")
	cmd.Flags().IntVar(&request.RecentDays, "recent-days", 0, "Only fetch records changed in the last N days")
	cmd.Flags().BoolVar(&request.MaterializeToInventory, "materialize", false, "Add ingested shades to the user's inventory")
	cmd.Flags().BoolVar(&request.DetectHexFromImage, "detect-hex", false, "Detect missing colors from product images")
	cmd.Flags().BoolVar(&request.OverwriteDetectedHex, "overwrite-hex", false, "Replace existing colors with detected ones")
	cmd.Flags().StringVar(&request.SearchTerm, "search", "", "Connector search term")
	return cmd
}

func newJobsCancelCommand(ctx *commandContext) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobs(func(jobs *services.JobService, _ *sqlite.Store) error {
				job, err := jobs.CancelJob(cmd.Context(), args[0], reason)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, job)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %s (%s)\n", job.ID, job.CancelReason)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded on the job")
	return cmd
}
