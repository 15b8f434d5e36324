package transcription

import (
	"context"

	"karaoke/internal/transcript"
)

// Request describes one audio file to transcribe. Empty fields fall back to
// the engine's configured defaults.
type Request struct {
	AudioPath   string
	Model       string
	Language    string
	Device      string
	BatchSize   int
	ComputeType string
}

// Engine turns audio into a transcript with word-level timestamps. Speech
// recognition and alignment are delegated entirely to the implementation.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, req Request) (*transcript.Transcript, error)
}
