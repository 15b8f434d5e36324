package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Word is a single aligned word with its timing in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score,omitempty"`
}

// Segment is a contiguous, time-bounded span of transcript text.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Transcript is the on-disk contract between the transcription and build steps.
type Transcript struct {
	Title    string    `json:"title,omitempty"`
	Language string    `json:"language"`
	AudioURL string    `json:"audio_url,omitempty"`
	Segments []Segment `json:"segments"`

	// titleSet records that the parsed document carried a title key.
	titleSet bool
}

// Load reads and parses a transcript document.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Parse decodes a transcript. Unknown fields are ignored and missing optional
// fields keep their zero values. Scalar fields are read leniently: a numeric
// title becomes its literal text and a quoted number is accepted as a time.
// The document, the segments list and each word list must still be well formed.
func Parse(data []byte) (*Transcript, error) {
	var doc looseTranscript
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	t := &Transcript{
		Title:    doc.Title.value,
		Language: doc.Language.value,
		AudioURL: doc.AudioURL.value,
		titleSet: doc.Title.set,
	}
	if doc.Segments != nil {
		t.Segments = make([]Segment, 0, len(doc.Segments))
	}
	for _, seg := range doc.Segments {
		out := Segment{Start: float64(seg.Start), End: float64(seg.End), Text: seg.Text.value}
		for _, w := range seg.Words {
			out.Words = append(out.Words, Word{
				Word:  w.Word.value,
				Start: float64(w.Start),
				End:   float64(w.End),
				Score: float64(w.Score),
			})
		}
		t.Segments = append(t.Segments, out)
	}
	return t, nil
}

// Marshal renders the transcript as indented JSON with a trailing newline.
func (t *Transcript) Marshal() ([]byte, error) {
	if t.Segments == nil {
		clone := *t
		clone.Segments = []Segment{}
		t = &clone
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DisplayTitle returns the title exactly as the document gave it, or stem
// when the document has no title.
func (t *Transcript) DisplayTitle(stem string) string {
	if t != nil && (t.titleSet || t.Title != "") {
		return t.Title
	}
	return stem
}

// Duration returns the end time of the last segment in seconds.
func (t *Transcript) Duration() float64 {
	var end float64
	for _, seg := range t.Segments {
		if seg.End > end {
			end = seg.End
		}
	}
	return end
}

// WordCount returns the number of word entries across all segments.
func (t *Transcript) WordCount() int {
	total := 0
	for _, seg := range t.Segments {
		total += len(seg.Words)
	}
	return total
}

// Issues reports ordering problems without repairing them: segments out of
// start order and decreasing word timestamps inside a segment.
func (t *Transcript) Issues() []string {
	var issues []string
	for i, seg := range t.Segments {
		if i > 0 && seg.Start < t.Segments[i-1].Start {
			issues = append(issues, fmt.Sprintf("segment %d starts before segment %d", i, i-1))
		}
		for j := 1; j < len(seg.Words); j++ {
			if seg.Words[j].Start < seg.Words[j-1].Start {
				issues = append(issues, fmt.Sprintf("segment %d word %d starts before word %d", i, j, j-1))
			}
		}
	}
	return issues
}

// Stem returns the base filename without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
