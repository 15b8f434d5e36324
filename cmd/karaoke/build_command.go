package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"karaoke/internal/pages"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var prune bool
	var skipInvalid bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate transcript pages and the index",
		Long: "Build renders one page per transcript JSON from the page template, copies the\n" +
			"stylesheet, script, transcript data and paired audio into the output assets\n" +
			"tree and writes index.html.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := pages.OptionsFromConfig(cfg)
			if cmd.Flags().Changed("prune") {
				opts.PruneStale = prune
			}
			if cmd.Flags().Changed("skip-invalid") {
				opts.SkipInvalid = skipInvalid
			}

			result, err := pages.NewBuilder(opts, logger).Build(runContext(cmd, "build"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(result.Pages))
			for _, page := range result.Pages {
				rows = append(rows, []string{
					page.File,
					page.Title,
					orDash(page.Audio),
					orDash(page.Language),
					strconv.Itoa(page.Words),
				})
			}
			writeRows(out, []string{"Page", "Title", "Audio", "Language", "Words"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
			for _, skipped := range result.Skipped {
				fmt.Fprintf(out, "Skipped %s: %s\n", skipped.File, skipped.Reason)
			}
			for _, pruned := range result.Pruned {
				fmt.Fprintf(out, "Pruned %s\n", pruned)
			}
			fmt.Fprintf(out, "Index: %s\n", result.Index)
			return nil
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Remove files generated by earlier builds that this build no longer produces")
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "Skip transcripts that fail to parse instead of aborting")
	return cmd
}
