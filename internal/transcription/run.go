package transcription

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"karaoke/internal/logging"
	"karaoke/internal/services"
	"karaoke/internal/transcript"
)

// Run transcribes one audio file and writes the five artifacts into
// outputDir, named after the audio stem. Existing artifacts are overwritten.
func Run(ctx context.Context, engine Engine, req Request, outputDir string, logger *slog.Logger) (transcript.Artifacts, error) {
	logger = logging.NewComponentLogger(logger, "transcription")
	if engine == nil {
		return transcript.Artifacts{}, services.Wrap(services.ErrConfiguration, "transcription", "run", "No transcription engine configured", nil)
	}

	info, err := os.Stat(req.AudioPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return transcript.Artifacts{}, &services.ServiceError{
			Marker:    services.ErrNotFound,
			Kind:      services.ErrorKindMissingInput,
			Operation: "run",
			Message:   fmt.Sprintf("audio file %s does not exist", req.AudioPath),
		}
	case err != nil:
		return transcript.Artifacts{}, services.Wrap(services.ErrTransient, "transcription", "stat audio", "Failed to inspect audio file", err)
	case info.IsDir():
		return transcript.Artifacts{}, services.Wrap(services.ErrValidation, "transcription", "run", fmt.Sprintf("Audio path %s is a directory", req.AudioPath), nil)
	}

	if strings.TrimSpace(outputDir) == "" {
		return transcript.Artifacts{}, services.Wrap(services.ErrConfiguration, "transcription", "run", "Output directory not configured", nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return transcript.Artifacts{}, services.Wrap(services.ErrTransient, "transcription", "create output", "Failed to create output directory", err)
	}

	stem := transcript.Stem(req.AudioPath)
	ctx = services.WithTranscript(ctx, stem)

	start := time.Now()
	logger.InfoContext(ctx, "transcription started",
		logging.String("engine", engine.Name()),
		logging.String("audio", req.AudioPath),
		logging.String("output_dir", outputDir),
	)
	result, err := engine.Transcribe(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return transcript.Artifacts{}, err
		}
		if !services.Marked(err) {
			err = services.Wrap(services.ErrExternalTool, "transcription", engine.Name(), "Transcription engine failed", err)
		}
		return transcript.Artifacts{}, err
	}
	if result == nil {
		return transcript.Artifacts{}, services.Wrap(services.ErrExternalTool, "transcription", engine.Name(), "Transcription engine returned no result", nil)
	}
	for _, issue := range result.Issues() {
		logging.WarnWithContext(ctx, logger, "transcript timing irregularity", "timing_irregular",
			logging.String("issue", issue),
			logging.String(logging.FieldErrorHint, "check the audio quality or try a larger model"),
			logging.String(logging.FieldImpact, "highlighting may jump for the affected words"),
		)
	}

	artifacts, err := transcript.WriteArtifacts(outputDir, stem, result)
	if err != nil {
		return transcript.Artifacts{}, services.Wrap(services.ErrTransient, "transcription", "write artifacts", "Failed to write transcript artifacts", err)
	}

	logger.InfoContext(ctx, "transcription completed",
		logging.Duration("elapsed", time.Since(start)),
		logging.Int("segments", len(result.Segments)),
		logging.Int("words", result.WordCount()),
		logging.String("language", result.Language),
		logging.String("json", artifacts.JSON),
	)
	return artifacts, nil
}
