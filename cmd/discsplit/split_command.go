package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"discsplit/internal/dispatch"
	"discsplit/internal/history"
	"discsplit/internal/logging"
	"discsplit/internal/preflight"
	"discsplit/internal/prompt"
	"discsplit/internal/ripping"
	"discsplit/internal/services"
)

type splitOptions struct {
	artist    string
	album     string
	tracks    []string
	tracksSet bool
	assumeYes bool
}

func runSplit(cmd *cobra.Command, ctx *commandContext, input, output string, opts splitOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if missing := preflight.MissingRequired(preflight.CheckSystemDeps(cfg)); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, status := range missing {
			names = append(names, status.Detail)
		}
		return services.Wrap(services.ErrConfiguration, "preflight", "check tools", strings.Join(names, "; "), nil)
	}

	pipelineOpts := []ripping.Option{ripping.WithLogger(logger)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		pipelineOpts = append(pipelineOpts, ripping.WithRecorder(store))
	}

	pipeline, err := ripping.New(cfg, newCollector(cmd, opts), pipelineOpts...)
	if err != nil {
		return err
	}
	outcome, runErr := pipeline.Run(cmd.Context(), input, output)
	if len(outcome.Report.Results) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), renderReport(outcome.Report))
	}
	return runErr
}

// newCollector prompts on a terminal unless metadata was given as flags.
func newCollector(cmd *cobra.Command, opts splitOptions) prompt.Collector {
	preset := prompt.Preset{Artist: opts.artist, AlbumTitle: opts.album}
	if opts.tracksSet {
		preset.Names = append([]string{}, opts.tracks...)
	}
	flagged := opts.artist != "" || opts.album != "" || opts.tracksSet
	if flagged || !isTerminal(cmd.InOrStdin()) {
		return preset
	}
	return prompt.NewInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), opts.assumeYes)
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderReport(report dispatch.Report) string {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		status := "ok"
		if !res.OK() {
			status = fmt.Sprintf("failed (exit %d)", res.ExitCode)
		}
		rows = append(rows, []string{
			strconv.Itoa(res.Job.Index),
			res.Job.Name,
			status,
			res.Elapsed.Round(100 * time.Millisecond).String(),
		})
	}
	summary := fmt.Sprintf("%d ok, %d failed", report.Succeeded(), len(report.Failed()))
	return renderTable(tableSpec{
		Columns: []column{
			{Header: "Track", Align: alignRight},
			{Header: "Name", MaxWidth: 40},
			{Header: "Status"},
			{Header: "Elapsed", Align: alignRight},
		},
		Rows:   rows,
		Footer: []string{"", "", summary, report.Elapsed.Round(100 * time.Millisecond).String()},
	})
}
