package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gogpt "github.com/sashabaranov/go-openai"

	"karaoke/internal/logging"
	"karaoke/internal/services"
	"karaoke/internal/transcript"
	"karaoke/internal/transcription"
)

// Default request settings.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "whisper-1"
	defaultTimeout = 10 * time.Minute
)

// Config describes how to reach the transcription endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client wraps the go-openai client as a transcription engine.
type Client struct {
	cfg    Config
	api    *gogpt.Client
	logger *slog.Logger
}

// NewClient constructs an engine for the configured endpoint.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	apiCfg := gogpt.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		cfg:    cfg,
		api:    gogpt.NewClientWithConfig(apiCfg),
		logger: logging.NewComponentLogger(logger, "openai"),
	}
}

// Name identifies the engine in logs and CLI output.
func (c *Client) Name() string {
	return "openai"
}

// Transcribe uploads the audio file and converts the verbose response.
func (c *Client) Transcribe(ctx context.Context, req transcription.Request) (*transcript.Transcript, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "openai", "transcribe", "Audio path required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "openai", "transcribe", "API key not configured", nil)
	}

	model := strings.TrimSpace(req.Model)
	if model == "" || (!strings.Contains(model, "whisper") && !strings.Contains(model, "transcribe")) {
		// Local WhisperX model names ("small", "large-v3") have no hosted equivalent.
		model = c.cfg.Model
	}
	language := transcript.NormalizeLanguage(req.Language)

	start := time.Now()
	c.logger.InfoContext(ctx, "requesting transcription",
		logging.String("audio", req.AudioPath),
		logging.String("model", model),
		logging.String("language", language),
	)
	resp, err := c.api.CreateTranscription(ctx, gogpt.AudioRequest{
		Model:    model,
		FilePath: req.AudioPath,
		Language: language,
		Format:   gogpt.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []gogpt.TranscriptionTimestampGranularity{
			gogpt.TranscriptionTimestampGranularityWord,
			gogpt.TranscriptionTimestampGranularitySegment,
		},
	})
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTransient
		}
		return nil, services.Wrap(marker, "openai", "transcribe", "Transcription request failed", err)
	}

	result := convert(resp)
	if result.Language == "" {
		result.Language = language
	}
	c.logger.InfoContext(ctx, "transcription received",
		logging.Duration("elapsed", time.Since(start)),
		logging.Int("segments", len(result.Segments)),
		logging.Int("words", result.WordCount()),
		logging.String("language", result.Language),
	)
	return result, nil
}

func convert(resp gogpt.AudioResponse) *transcript.Transcript {
	result := &transcript.Transcript{
		Language: transcript.NormalizeLanguage(resp.Language),
		Segments: make([]transcript.Segment, 0, len(resp.Segments)),
	}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	if len(result.Segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		end := resp.Duration
		if n := len(resp.Words); n > 0 && resp.Words[n-1].End > end {
			end = resp.Words[n-1].End
		}
		result.Segments = append(result.Segments, transcript.Segment{
			Start: 0,
			End:   end,
			Text:  strings.TrimSpace(resp.Text),
		})
	}

	idx := 0
	for _, w := range resp.Words {
		word := strings.TrimSpace(w.Word)
		if word == "" || len(result.Segments) == 0 {
			continue
		}
		for idx < len(result.Segments)-1 && w.Start >= result.Segments[idx+1].Start {
			idx++
		}
		seg := &result.Segments[idx]
		seg.Words = append(seg.Words, transcript.Word{Word: word, Start: w.Start, End: w.End})
	}
	return result
}

// HealthCheck verifies that the endpoint answers and accepts the API key.
func (c *Client) HealthCheck(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return services.Wrap(services.ErrConfiguration, "openai", "health check", "API key not configured", nil)
	}
	if _, err := c.api.ListModels(ctx); err != nil {
		return services.Wrap(services.ErrExternalTool, "openai", "health check", "Model listing failed", err)
	}
	return nil
}
