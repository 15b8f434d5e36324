package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 0x42
	}
	writeBytes(t, path, data)
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()
	writeBytes(t, path, []byte(content))
}

// WriteTranscript stores doc as <dir>/<stem>.json. doc may be a string of raw
// JSON or any value accepted by encoding/json.
func WriteTranscript(t testing.TB, dir, stem string, doc any) string {
	t.Helper()

	var data []byte
	switch v := doc.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			t.Fatalf("encode transcript %s: %v", stem, err)
		}
		data = encoded
	}
	path := filepath.Join(dir, stem+".json")
	writeBytes(t, path, data)
	return path
}

// IntroTranscript is a one-segment transcript with word timings.
const IntroTranscript = `{"title": "Intro", "language": "en", "segments": [{"text": "Hello world", "start": 0.0, "end": 1.0, "words": [{"word": "Hello", "start": 0.0, "end": 0.4}, {"word": "world", "start": 0.5, "end": 1.0}]}]}`

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
