package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"karaoke/internal/logging"
	"karaoke/internal/services"
	"karaoke/internal/transcript"
	"karaoke/internal/transcription"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
	lookPath      func(file string) (string, error)
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if strings.TrimSpace(cfg.UVXCommand) == "" {
		cfg.UVXCommand = UVXCommand
	}
	if strings.TrimSpace(cfg.Package) == "" {
		cfg.Package = PackageName
	}
	return &Service{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "whisperx"),
		lookPath: exec.LookPath,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// WithLookPath overrides executable discovery used for device detection (for testing).
func (s *Service) WithLookPath(fn func(file string) (string, error)) {
	s.lookPath = fn
}

// Name identifies the engine in logs and CLI output.
func (s *Service) Name() string {
	return "whisperx"
}

// ResolveDevice maps "auto" (or blank) to cuda when an NVIDIA GPU is visible,
// cpu otherwise. Explicit devices are passed through unchanged.
func (s *Service) ResolveDevice(requested string) string {
	device := strings.ToLower(strings.TrimSpace(requested))
	if device != "" && device != AutoDevice {
		return device
	}
	if s.lookPath != nil {
		if _, err := s.lookPath(nvidiaProbeCommand); err == nil {
			return CUDADevice
		}
	}
	return CPUDevice
}

// Transcribe runs WhisperX on the request's audio file and loads the aligned result.
func (s *Service) Transcribe(ctx context.Context, req transcription.Request) (*transcript.Transcript, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "whisperx", "transcribe", "Audio path required", nil)
	}

	workDir, err := os.MkdirTemp("", "karaoke-whisperx-")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "whisperx", "transcribe", "Failed to create work directory", err)
	}
	defer os.RemoveAll(workDir)

	settings := s.settings(req)
	args := s.buildArgs(req.AudioPath, workDir, settings)

	start := time.Now()
	s.logger.InfoContext(ctx, "running whisperx",
		logging.String("audio", req.AudioPath),
		logging.String("model", settings.model),
		logging.String("device", settings.device),
		logging.String("compute_type", settings.computeType),
		logging.Int("batch_size", settings.batchSize),
		logging.String("language", settings.language),
	)
	if err := s.run(ctx, s.cfg.UVXCommand, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisperx", "transcribe", "WhisperX run failed", err)
	}

	jsonPath := filepath.Join(workDir, transcript.Stem(req.AudioPath)+".json")
	result, err := LoadResult(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisperx", "load result", "WhisperX produced no readable JSON", err)
	}
	if result.Language == "" {
		result.Language = settings.language
	}
	s.logger.InfoContext(ctx, "whisperx finished",
		logging.Duration("elapsed", time.Since(start)),
		logging.Int("segments", len(result.Segments)),
		logging.Int("words", result.WordCount()),
		logging.String("language", result.Language),
	)
	return result, nil
}

type runSettings struct {
	model       string
	language    string
	device      string
	computeType string
	batchSize   int
}

func (s *Service) settings(req transcription.Request) runSettings {
	rs := runSettings{
		model:       firstNonEmpty(req.Model, s.cfg.Model, DefaultModel),
		language:    transcript.NormalizeLanguage(req.Language),
		computeType: firstNonEmpty(req.ComputeType, s.cfg.ComputeType, DefaultComputeType),
		batchSize:   req.BatchSize,
	}
	rs.device = s.ResolveDevice(firstNonEmpty(req.Device, s.cfg.Device))
	if rs.batchSize <= 0 {
		rs.batchSize = s.cfg.BatchSize
	}
	if rs.batchSize <= 0 {
		rs.batchSize = DefaultBatchSize
	}
	return rs
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string, rs runSettings) []string {
	args := make([]string, 0, 24)

	if rs.device == CUDADevice {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		s.cfg.Package,
		source,
		"--model", rs.model,
		"--batch_size", strconv.Itoa(rs.batchSize),
		"--device", rs.device,
		"--compute_type", rs.computeType,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
	)

	if rs.language != "" {
		args = append(args, "--language", rs.language)
	}
	return args
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if err := cmd.Run(); err != nil {
		raw := strings.TrimSpace(stderr.String())
		return &services.ServiceError{
			Marker:     services.ErrExternalTool,
			Kind:       services.ErrorKindExternal,
			Operation:  "command",
			Message:    lastLine(raw),
			DetailPath: s.writeToolLog(name, args, raw),
			Cause:      fmt.Errorf("%s: %w", name, err),
		}
	}
	return nil
}

func (s *Service) writeToolLog(name string, args []string, stderr string) string {
	logDir := strings.TrimSpace(s.cfg.LogDir)
	if logDir == "" {
		return ""
	}
	toolDir := filepath.Join(logDir, "tool")
	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		s.logger.Warn("failed to create tool log directory; tool stderr not captured",
			logging.Error(err),
			logging.String(logging.FieldEventType, "tool_log_dir_failed"),
			logging.String(logging.FieldErrorHint, "check log_dir permissions"),
		)
		return ""
	}
	timestamp := time.Now().UTC().Format("20060102T150405.000Z")
	path := filepath.Join(toolDir, fmt.Sprintf("%s-whisperx.log", timestamp))

	var payload strings.Builder
	payload.WriteString("command: ")
	payload.WriteString(strings.Join(append([]string{name}, args...), " "))
	payload.WriteString("\nstderr:\n")
	payload.WriteString(stderr)
	payload.WriteByte('\n')

	if err := os.WriteFile(path, []byte(payload.String()), 0o644); err != nil {
		s.logger.Warn("failed to write tool log; stderr detail lost",
			logging.Error(err),
			logging.String(logging.FieldEventType, "tool_log_write_failed"),
			logging.String(logging.FieldErrorHint, "check log_dir permissions"),
		)
		return ""
	}
	return path
}

// rawWord mirrors WhisperX word output, where numerals and symbols the
// aligner cannot place carry no timing.
type rawWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score *float64 `json:"score"`
}

type rawSegment struct {
	Start float64   `json:"start"`
	End   float64   `json:"end"`
	Text  string    `json:"text"`
	Words []rawWord `json:"words"`
}

type rawResult struct {
	Language string       `json:"language"`
	Segments []rawSegment `json:"segments"`
}

// LoadResult loads a WhisperX JSON file into the shared transcript model.
func LoadResult(jsonPath string) (*transcript.Transcript, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload rawResult
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	result := &transcript.Transcript{
		Language: transcript.NormalizeLanguage(payload.Language),
		Segments: make([]transcript.Segment, 0, len(payload.Segments)),
	}
	for _, seg := range payload.Segments {
		result.Segments = append(result.Segments, transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
			Words: fillWordTiming(seg),
		})
	}
	return result, nil
}

// fillWordTiming converts raw words, giving untimed words the gap between
// their timed neighbours. Timings WhisperX did report are kept as-is, so
// ordering problems still surface through Transcript.Issues.
func fillWordTiming(seg rawSegment) []transcript.Word {
	if len(seg.Words) == 0 {
		return nil
	}
	words := make([]transcript.Word, 0, len(seg.Words))
	prevEnd := seg.Start
	for i, raw := range seg.Words {
		w := transcript.Word{Word: strings.TrimSpace(raw.Word)}
		if raw.Start != nil {
			w.Start = *raw.Start
		} else {
			w.Start = prevEnd
		}
		if raw.End != nil {
			w.End = *raw.End
		} else {
			w.End = max(nextStart(seg, i), w.Start)
		}
		if raw.Score != nil {
			w.Score = *raw.Score
		}
		words = append(words, w)
		prevEnd = w.End
	}
	return words
}

func nextStart(seg rawSegment, index int) float64 {
	for _, w := range seg.Words[index+1:] {
		if w.Start != nil {
			return *w.Start
		}
	}
	return seg.End
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
