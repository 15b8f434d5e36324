package preflight

import (
	"context"

	"karaoke/internal/config"
	"karaoke/internal/services/openai"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the readiness checks that apply to the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckFile("Page template", cfg.Paths.Template),
		CheckFile("Stylesheet", cfg.StylesheetPath()),
		CheckFile("Script", cfg.ScriptPath()),
		CheckDirectoryAccess("Transcripts directory", cfg.Paths.TranscriptsDir),
		CheckOptionalDirectory("Audio directory", cfg.Paths.AudioDir),
		CheckWritableTarget("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckWritableTarget("Log directory", cfg.Paths.LogDir))
	}

	for _, status := range CheckSystemDeps(cfg) {
		detail := status.Command
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   detail,
		})
	}

	if cfg.Transcription.Backend == config.BackendOpenAI {
		client := openai.NewClient(openai.Config{
			APIKey:  cfg.Transcription.OpenAIAPIKey,
			BaseURL: cfg.Transcription.OpenAIBaseURL,
			Model:   cfg.Transcription.OpenAIModel,
		}, nil)
		results = append(results, CheckAPI(ctx, "Transcription API", client))
	}

	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
