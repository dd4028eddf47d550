package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"discsplit/internal/preflight"
	"discsplit/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [output-dir]",
		Short: "Check external tools and directories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := preflight.CheckSystemDeps(cfg)
			depRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				depRows = append(depRows, []string{
					status.Name,
					status.Command,
					yesNo(status.Available),
					yesNo(!status.Optional),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				Columns: []column{
					{Header: "Tool"},
					{Header: "Command", MaxWidth: 40},
					{Header: "Found"},
					{Header: "Required"},
					{Header: "Detail", MaxWidth: 48},
				},
				Rows: depRows,
			}))

			results := preflight.RunAll(cmd.Context(), cfg)
			if len(args) == 1 {
				results = append(results, preflight.CheckDirectoryAccess("Output directory", args[0]))
			}
			dirRows := make([][]string, 0, len(results))
			for _, result := range results {
				dirRows = append(dirRows, []string{result.Name, yesNo(result.Passed), result.Detail})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				Columns: []column{{Header: "Check"}, {Header: "Passed"}, {Header: "Detail", MaxWidth: 60}},
				Rows:    dirRows,
			}))

			missing := preflight.MissingRequired(statuses)
			failed := preflight.Failed(results)
			if len(missing) > 0 || len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "check", "",
					fmt.Sprintf("%d required tools missing, %d directory checks failed", len(missing), len(failed)), nil)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
