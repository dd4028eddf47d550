package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"discsplit/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				run, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", runID)
				}
				fmt.Fprintln(out, renderRunJobs(run))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show per-track results for one run")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	return cmd
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Kind,
			fmt.Sprintf("%s - %s", run.Artist, run.Album),
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Failed),
		})
	}
	return renderTable(tableSpec{
		Columns: []column{
			{Header: "Run"},
			{Header: "Started"},
			{Header: "Format"},
			{Header: "Album", MaxWidth: 40},
			{Header: "OK", Align: alignRight},
			{Header: "Failed", Align: alignRight},
		},
		Rows: rows,
	})
}

func renderRunJobs(run *history.Run) string {
	rows := make([][]string, 0, len(run.Jobs))
	for _, job := range run.Jobs {
		status := "ok"
		if job.Error != "" {
			status = fmt.Sprintf("exit %d: %s", job.ExitCode, job.Error)
		}
		rows = append(rows, []string{
			strconv.Itoa(job.TrackIndex),
			job.Name,
			job.Output,
			status,
		})
	}
	footer := []string{"", fmt.Sprintf("%s - %s", run.Artist, run.Album), run.Output, fmt.Sprintf("%d ok, %d failed", run.Succeeded, run.Failed)}
	return renderTable(tableSpec{
		Columns: []column{
			{Header: "Track", Align: alignRight},
			{Header: "Name", MaxWidth: 32},
			{Header: "Output", MaxWidth: 48},
			{Header: "Status", MaxWidth: 40},
		},
		Rows:   rows,
		Footer: footer,
	})
}
