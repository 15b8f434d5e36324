package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"karaoke/internal/config"
	"karaoke/internal/logging"
	"karaoke/internal/services"
	"karaoke/internal/services/openai"
	"karaoke/internal/services/whisperx"
	"karaoke/internal/transcript"
	"karaoke/internal/transcription"
)

type transcribeFlags struct {
	model       string
	language    string
	device      string
	batchSize   int
	computeType string
	backend     string
	outputDir   string
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var flags transcribeFlags

	cmd := &cobra.Command{
		Use:   "transcribe <audio>",
		Short: "Transcribe an audio file into JSON, subtitles and text",
		Long: "Transcribe runs the configured speech-to-text engine on one audio file and writes\n" +
			"<stem>.json, <stem>.srt, <stem>.vtt, <stem>.txt and <stem>_words.txt to the\n" +
			"transcript directory. Existing files are overwritten.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			settings := cfg.Transcription
			applyTranscribeFlags(cmd, flags, &settings)
			if err := validateTranscribeSettings(settings); err != nil {
				return err
			}

			outputDir := cfg.Paths.TranscriptsDir
			if cmd.Flags().Changed("output_dir") {
				if outputDir, err = config.ExpandPath(flags.outputDir); err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}
			audioPath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve audio path: %w", err)
			}

			engine, err := newEngine(cfg, settings, logger)
			if err != nil {
				return err
			}

			req := transcription.Request{
				AudioPath:   audioPath,
				Model:       settings.Model,
				Language:    settings.Language,
				Device:      settings.Device,
				BatchSize:   settings.BatchSize,
				ComputeType: settings.ComputeType,
			}
			artifacts, err := transcription.Run(runContext(cmd, "transcribe"), engine, req, outputDir, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range artifacts.Paths() {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.model, "model", "small", "Whisper model name")
	cmd.Flags().StringVar(&flags.language, "language", "", "Language code (auto-detect when empty)")
	cmd.Flags().StringVar(&flags.device, "device", config.DeviceAuto, "Compute device: auto, cuda or cpu")
	cmd.Flags().IntVar(&flags.batchSize, "batch_size", 8, "Inference batch size")
	cmd.Flags().StringVar(&flags.computeType, "compute_type", "float32", "Numeric precision: float32, float16 or int8")
	cmd.Flags().StringVar(&flags.backend, "backend", config.BackendWhisperX, "Transcription engine: whisperx or openai")
	cmd.Flags().StringVar(&flags.outputDir, "output_dir", "", "Directory for transcript files (default: configured transcripts_dir)")
	return cmd
}

// applyTranscribeFlags overlays explicitly set flags on the configured values.
func applyTranscribeFlags(cmd *cobra.Command, flags transcribeFlags, settings *config.Transcription) {
	changed := cmd.Flags().Changed
	if changed("model") {
		settings.Model = strings.TrimSpace(flags.model)
	}
	if changed("language") {
		settings.Language = strings.TrimSpace(flags.language)
	}
	if changed("device") {
		settings.Device = strings.ToLower(strings.TrimSpace(flags.device))
	}
	if changed("batch_size") {
		settings.BatchSize = flags.batchSize
	}
	if changed("compute_type") {
		settings.ComputeType = strings.ToLower(strings.TrimSpace(flags.computeType))
	}
	if changed("backend") {
		settings.Backend = strings.ToLower(strings.TrimSpace(flags.backend))
	}
}

func validateTranscribeSettings(settings config.Transcription) error {
	if settings.BatchSize <= 0 {
		return services.Wrap(services.ErrValidation, "transcribe", "flags", fmt.Sprintf("batch_size must be positive (got %d)", settings.BatchSize), nil)
	}
	if settings.Language != "" && !transcript.ValidLanguage(settings.Language) {
		return services.Wrap(services.ErrValidation, "transcribe", "flags", fmt.Sprintf("language %q is not a valid language tag", settings.Language), nil)
	}
	return nil
}

func newEngine(cfg *config.Config, settings config.Transcription, logger *slog.Logger) (transcription.Engine, error) {
	switch settings.Backend {
	case config.BackendWhisperX, "":
		return whisperx.NewService(whisperx.Config{
			Model:       settings.Model,
			Device:      settings.Device,
			ComputeType: settings.ComputeType,
			BatchSize:   settings.BatchSize,
			UVXCommand:  settings.UVXCommand,
			Package:     settings.Package,
			LogDir:      cfg.Paths.LogDir,
		}, logger), nil
	case config.BackendOpenAI:
		if strings.TrimSpace(settings.OpenAIAPIKey) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "transcribe", "openai", "openai_api_key not set (or export OPENAI_API_KEY)", nil)
		}
		return openai.NewClient(openai.Config{
			APIKey:  settings.OpenAIAPIKey,
			BaseURL: settings.OpenAIBaseURL,
			Model:   settings.OpenAIModel,
		}, logger), nil
	default:
		logger.Warn("unknown transcription backend",
			logging.String("backend", settings.Backend),
			logging.String(logging.FieldEventType, "backend_unknown"),
			logging.String(logging.FieldErrorHint, "use whisperx or openai"),
		)
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "backend", fmt.Sprintf("unknown backend %q", settings.Backend), nil)
	}
}
