package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"karaoke/internal/pages"
	"karaoke/internal/transcript"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transcripts and their paired audio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			matches, err := filepath.Glob(filepath.Join(cfg.Paths.TranscriptsDir, "*.json"))
			if err != nil {
				return fmt.Errorf("list transcripts: %w", err)
			}
			sort.Strings(matches)

			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(out, "No transcripts in %s\n", cfg.Paths.TranscriptsDir)
				return nil
			}

			rows := make([][]string, 0, len(matches))
			for _, path := range matches {
				name := filepath.Base(path)
				stem := transcript.Stem(name)
				t, err := transcript.Load(path)
				if err != nil {
					rows = append(rows, []string{name, "(invalid: " + err.Error() + ")", "-", "-", "-", "-", "-"})
					continue
				}
				rows = append(rows, []string{
					name,
					t.DisplayTitle(stem),
					orDash(transcript.LanguageName(t.Language)),
					strconv.Itoa(len(t.Segments)),
					strconv.Itoa(t.WordCount()),
					formatSeconds(t.Duration()),
					audioLabel(cfg.Paths.AudioDir, stem, t),
				})
			}
			writeRows(out, []string{"File", "Title", "Language", "Segments", "Words", "Duration", "Audio"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft})
			return nil
		},
	}
}

func audioLabel(audioDir, stem string, t *transcript.Transcript) string {
	if t.AudioURL != "" {
		return t.AudioURL
	}
	found, err := pages.FindAudio(audioDir, stem)
	if err != nil || found == "" {
		return "-"
	}
	return filepath.Base(found)
}

func formatSeconds(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
