package transcript_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"karaoke/internal/transcript"
)

const introJSON = `{"title": "Intro", "segments": [{"text": "Hello world", "start": 0.0, "end": 1.0, "words": [{"word": "Hello", "start": 0.0, "end": 0.4}, {"word": "world", "start": 0.5, "end": 1.0}]}]}`

func mustParse(t *testing.T, raw string) *transcript.Transcript {
	t.Helper()
	tr, err := transcript.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return tr
}

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"explicit", `{"title": "Intro", "segments": []}`, "Intro"},
		{"missing", `{"segments": []}`, "intro"},
		{"verbatim", `{"title": "  Intro  ", "segments": []}`, "  Intro  "},
		{"null", `{"title": null, "segments": []}`, "intro"},
		{"numeric", `{"title": 5, "segments": []}`, "5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustParse(t, tc.raw).DisplayTitle("intro"); got != tc.want {
				t.Fatalf("DisplayTitle() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseIgnoresUnknownFields(t *testing.T) {
	tr := mustParse(t, `{"language": "en", "word_segments": [], "segments": [{"start": 1, "end": 2, "text": " hi", "avg_logprob": -0.2}]}`)
	if tr.Language != "en" || len(tr.Segments) != 1 || tr.Segments[0].Text != " hi" {
		t.Fatalf("unexpected transcript %+v", tr)
	}
	if tr.AudioURL != "" {
		t.Fatalf("expected empty audio url, got %q", tr.AudioURL)
	}
}

func TestParseToleratesMistypedScalars(t *testing.T) {
	tr := mustParse(t, `{"title": 5, "language": "en", "audio_url": false, "segments": [
		{"start": "0.1", "end": 1, "text": "hi", "words": [{"word": "hi", "start": "0.1", "end": "oops"}]}
	]}`)
	if tr.Title != "5" || tr.AudioURL != "" {
		t.Fatalf("unexpected scalar fields %+v", tr)
	}
	seg := tr.Segments[0]
	if seg.Start != 0.1 || seg.End != 1 {
		t.Fatalf("unexpected segment timing %+v", seg)
	}
	if w := seg.Words[0]; w.Start != 0.1 || w.End != 0 {
		t.Fatalf("unexpected word timing %+v", w)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := transcript.Parse([]byte(`{"segments": [`)); err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestLoadNamesFileInError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := transcript.Load(path)
	if err == nil || !strings.Contains(err.Error(), "broken.json") {
		t.Fatalf("expected error naming the file, got %v", err)
	}
}

func TestPlainTextAndWordTimestamps(t *testing.T) {
	tr := mustParse(t, introJSON)

	if got := transcript.PlainText(tr); got != "Hello world\n" {
		t.Fatalf("PlainText() = %q", got)
	}
	want := "[0.00 - 0.40] Hello\n[0.50 - 1.00] world\n"
	if got := transcript.WordTimestamps(tr); got != want {
		t.Fatalf("WordTimestamps() = %q, want %q", got, want)
	}
}

func TestWordTimestampsSkipsSegmentsWithoutWords(t *testing.T) {
	tr := mustParse(t, `{"segments": [
		{"text": "no words", "start": 0, "end": 1},
		{"text": "one", "start": 1, "end": 2, "words": [{"word": " one", "start": 1.234, "end": 1.999}]}
	]}`)
	lines := strings.Split(strings.TrimSuffix(transcript.WordTimestamps(tr), "\n"), "\n")
	if len(lines) != 1 || lines[0] != "[1.23 - 2.00] one" {
		t.Fatalf("unexpected word lines %q", lines)
	}
	if got := transcript.PlainText(tr); got != "no words\none\n" {
		t.Fatalf("PlainText() = %q", got)
	}
}

func TestCountsAndDuration(t *testing.T) {
	tr := mustParse(t, introJSON)
	if tr.WordCount() != 2 {
		t.Fatalf("WordCount() = %d", tr.WordCount())
	}
	if tr.Duration() != 1.0 {
		t.Fatalf("Duration() = %v", tr.Duration())
	}
}

func TestIssuesReportsOrdering(t *testing.T) {
	tr := mustParse(t, `{"segments": [
		{"text": "b", "start": 5, "end": 6, "words": [{"word": "x", "start": 5.5, "end": 5.6}, {"word": "y", "start": 5.1, "end": 5.2}]},
		{"text": "a", "start": 1, "end": 2}
	]}`)
	issues := tr.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected two issues, got %v", issues)
	}
	if len(mustParse(t, introJSON).Issues()) != 0 {
		t.Fatal("expected ordered transcript to have no issues")
	}
}

func TestMarshalKeepsEmptySegmentsArray(t *testing.T) {
	data, err := (&transcript.Transcript{Language: "en"}).Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !strings.Contains(string(data), `"segments": []`) {
		t.Fatalf("expected empty segments array, got %s", data)
	}
	if strings.Contains(string(data), "title") || strings.Contains(string(data), "audio_url") {
		t.Fatalf("expected optional fields to be omitted, got %s", data)
	}
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"data/transcripts/intro.json": "intro",
		"episode.01.mp3":              "episode.01",
		"noext":                       "noext",
	}
	for in, want := range cases {
		if got := transcript.Stem(in); got != want {
			t.Fatalf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLanguageHelpers(t *testing.T) {
	if got := transcript.NormalizeLanguage("EN-us"); got != "en" {
		t.Fatalf("NormalizeLanguage() = %q", got)
	}
	if got := transcript.NormalizeLanguage("english"); got != "en" {
		t.Fatalf("NormalizeLanguage(english) = %q", got)
	}
	if got := transcript.NormalizeLanguage(""); got != "" {
		t.Fatalf("expected empty language, got %q", got)
	}
	if got := transcript.LanguageName("es"); got != "Spanish" {
		t.Fatalf("LanguageName(es) = %q", got)
	}
	if transcript.LanguageName("") != "" {
		t.Fatal("expected empty name for empty code")
	}
	if transcript.ValidLanguage("not a tag!") {
		t.Fatal("expected invalid tag to be rejected")
	}
	if !transcript.ValidLanguage("english") {
		t.Fatal("expected english to be accepted")
	}
}
