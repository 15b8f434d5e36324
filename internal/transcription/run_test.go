package transcription_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"karaoke/internal/services"
	"karaoke/internal/transcript"
	"karaoke/internal/transcription"
)

type fakeEngine struct {
	result *transcript.Transcript
	err    error
	calls  int
	got    transcription.Request
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Transcribe(_ context.Context, req transcription.Request) (*transcript.Transcript, error) {
	f.calls++
	f.got = req
	return f.result, f.err
}

func introTranscript() *transcript.Transcript {
	return &transcript.Transcript{
		Language: "en",
		Segments: []transcript.Segment{{
			Start: 0.0,
			End:   1.2,
			Text:  "Hello world.",
			Words: []transcript.Word{
				{Word: "Hello", Start: 0.0, End: 0.5},
				{Word: "world.", Start: 0.6, End: 1.2},
			},
		}},
	}
}

func writeAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestRunWritesArtifactsNamedAfterStem(t *testing.T) {
	audio := writeAudio(t, "intro.mp3")
	outDir := filepath.Join(t.TempDir(), "transcripts")
	engine := &fakeEngine{result: introTranscript()}

	artifacts, err := transcription.Run(context.Background(), engine, transcription.Request{AudioPath: audio, Model: "small"}, outDir, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if engine.got.Model != "small" || engine.got.AudioPath != audio {
		t.Fatalf("engine received %+v", engine.got)
	}

	want := []string{"intro.json", "intro.srt", "intro.vtt", "intro.txt", "intro_words.txt"}
	for i, path := range artifacts.Paths() {
		if filepath.Base(path) != want[i] {
			t.Fatalf("artifact %d = %s, want %s", i, path, want[i])
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
	}

	text, err := os.ReadFile(artifacts.Text)
	if err != nil {
		t.Fatalf("read text: %v", err)
	}
	if string(text) != "Hello world.\n" {
		t.Fatalf("unexpected text artifact %q", text)
	}
	words, err := os.ReadFile(artifacts.Words)
	if err != nil {
		t.Fatalf("read words: %v", err)
	}
	if string(words) != "[0.00 - 0.50] Hello\n[0.60 - 1.20] world.\n" {
		t.Fatalf("unexpected words artifact %q", words)
	}
	loaded, err := transcript.Load(artifacts.JSON)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if loaded.WordCount() != 2 {
		t.Fatalf("json round trip lost words: %+v", loaded)
	}
}

func TestRunMissingAudioFailsBeforeOutput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "transcripts")
	engine := &fakeEngine{result: introTranscript()}

	_, err := transcription.Run(context.Background(), engine, transcription.Request{AudioPath: filepath.Join(t.TempDir(), "nope.mp3")}, outDir, nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if engine.calls != 0 {
		t.Fatal("engine should not be invoked")
	}
	if _, statErr := os.Stat(outDir); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("output directory should not be created, stat err=%v", statErr)
	}
}

func TestRunEngineFailureIsExternal(t *testing.T) {
	audio := writeAudio(t, "talk.wav")
	outDir := t.TempDir()
	engine := &fakeEngine{err: errors.New("no alignment model for xx")}

	_, err := transcription.Run(context.Background(), engine, transcription.Request{AudioPath: audio}, outDir, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no alignment model") {
		t.Fatalf("cause missing from %v", err)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("no artifacts expected, found %d", len(entries))
	}
}

func TestRunKeepsEngineMarker(t *testing.T) {
	audio := writeAudio(t, "talk.wav")
	engine := &fakeEngine{err: services.Wrap(services.ErrConfiguration, "openai", "transcribe", "API key not configured", nil)}

	_, err := transcription.Run(context.Background(), engine, transcription.Request{AudioPath: audio}, t.TempDir(), nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker preserved, got %v", err)
	}
	if errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("marker should not be rewrapped: %v", err)
	}
}

func TestRunOverwritesExistingArtifacts(t *testing.T) {
	audio := writeAudio(t, "intro.mp3")
	outDir := t.TempDir()
	stale := filepath.Join(outDir, "intro.txt")
	if err := os.WriteFile(stale, []byte("old content\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := transcription.Run(context.Background(), &fakeEngine{result: introTranscript()}, transcription.Request{AudioPath: audio}, outDir, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(stale)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "Hello world.\n" {
		t.Fatalf("artifact not overwritten: %q", data)
	}
}
