package openai_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"karaoke/internal/services"
	"karaoke/internal/services/openai"
	"karaoke/internal/transcription"
)

const verboseResponse = `{
  "task": "transcribe",
  "language": "english",
  "duration": 4.2,
  "text": "Hello world. Second line",
  "segments": [
    {"id": 0, "start": 0.0, "end": 1.5, "text": " Hello world."},
    {"id": 1, "start": 2.0, "end": 4.2, "text": " Second line"}
  ],
  "words": [
    {"word": "Hello", "start": 0.0, "end": 0.5},
    {"word": "world.", "start": 0.6, "end": 1.4},
    {"word": "Second", "start": 2.0, "end": 2.6},
    {"word": "line", "start": 2.7, "end": 3.3}
  ]
}`

type captured struct {
	path     string
	auth     string
	model    string
	format   string
	language string
	grains   []string
}

func newServer(t *testing.T, status int, body string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		got.model = r.FormValue("model")
		got.format = r.FormValue("response_format")
		got.language = r.FormValue("language")
		got.grains = r.MultipartForm.Value["timestamp_granularities[]"]
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intro.mp3")
	if err := os.WriteFile(path, []byte("ID3fake"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeAssignsWordsToSegments(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, verboseResponse, &got)
	client := openai.NewClient(openai.Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)

	result, err := client.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeAudio(t),
		Model:     "small",
		Language:  "en-US",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if got.path != "/audio/transcriptions" {
		t.Fatalf("unexpected path %q", got.path)
	}
	if got.auth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", got.auth)
	}
	if got.model != openai.DefaultModel {
		t.Fatalf("local model name should fall back to %s, got %q", openai.DefaultModel, got.model)
	}
	if got.format != "verbose_json" {
		t.Fatalf("response_format = %q", got.format)
	}
	if got.language != "en" {
		t.Fatalf("language = %q", got.language)
	}
	if strings.Join(got.grains, ",") != "word,segment" {
		t.Fatalf("timestamp granularities = %v", got.grains)
	}

	if result.Language != "en" {
		t.Fatalf("language not normalised: %q", result.Language)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}
	first, second := result.Segments[0], result.Segments[1]
	if first.Text != "Hello world." || len(first.Words) != 2 {
		t.Fatalf("first segment = %+v", first)
	}
	if len(second.Words) != 2 || second.Words[0].Word != "Second" {
		t.Fatalf("second segment = %+v", second)
	}
	if issues := result.Issues(); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestTranscribeKeepsHostedModelName(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, verboseResponse, &got)
	client := openai.NewClient(openai.Config{APIKey: "sk-test", BaseURL: srv.URL + "/"}, nil)

	if _, err := client.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeAudio(t),
		Model:     "gpt-4o-transcribe",
	}); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got.model != "gpt-4o-transcribe" {
		t.Fatalf("model = %q", got.model)
	}
}

func TestTranscribeServerErrorIsExternal(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusBadRequest, `{"error":{"message":"unsupported audio","type":"invalid_request_error"}}`, &got)
	client := openai.NewClient(openai.Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)

	_, err := client.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudio(t)})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	client := openai.NewClient(openai.Config{}, nil)
	_, err := client.Transcribe(context.Background(), transcription.Request{AudioPath: "/tmp/a.mp3"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" || r.Header.Get("Authorization") != "Bearer sk-good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[{"id":"whisper-1","object":"model"}]}`)
	}))
	defer srv.Close()

	good := openai.NewClient(openai.Config{APIKey: "sk-good", BaseURL: srv.URL}, nil)
	if err := good.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	bad := openai.NewClient(openai.Config{APIKey: "sk-bad", BaseURL: srv.URL}, nil)
	if err := bad.HealthCheck(context.Background()); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
