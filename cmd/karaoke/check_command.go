package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"karaoke/internal/preflight"
	"karaoke/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify templates, directories, tools and API access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(runContext(cmd, "check"), cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkStatus(r), r.Detail})
			}
			writeRows(cmd.OutOrStdout(), []string{"Check", "Status", "Detail"}, rows, nil)

			if preflight.Failed(results) {
				return services.Wrap(services.ErrConfiguration, "check", "preflight", "One or more required checks failed", nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All required checks passed")
			return nil
		},
	}
}

func checkStatus(r preflight.Result) string {
	switch {
	case r.Passed:
		return "ok"
	case r.Optional:
		return "warn"
	default:
		return "FAIL"
	}
}
