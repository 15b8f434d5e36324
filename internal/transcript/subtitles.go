package transcript

import (
	"fmt"
	"math"
	"strings"
)

const (
	highlightOpen  = "<u>"
	highlightClose = "</u>"
)

// Cue is one timed subtitle entry.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// HighlightCues expands segments into karaoke cues. A segment with words
// yields one cue per word showing the whole line with the active word
// underlined, plus an unmarked cue for any gap between consecutive words.
// A segment without words yields a single plain cue.
func HighlightCues(t *Transcript) []Cue {
	cues := make([]Cue, 0, len(t.Segments))
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if len(seg.Words) == 0 {
			if text != "" {
				cues = append(cues, Cue{Start: seg.Start, End: seg.End, Text: text})
			}
			continue
		}
		tokens := make([]string, len(seg.Words))
		for i, w := range seg.Words {
			tokens[i] = strings.TrimSpace(w.Word)
		}
		plain := strings.Join(tokens, " ")

		prevEnd := seg.Start
		for i, w := range seg.Words {
			if w.Start > prevEnd {
				cues = append(cues, Cue{Start: prevEnd, End: w.Start, Text: plain})
			}
			cues = append(cues, Cue{Start: w.Start, End: w.End, Text: highlightLine(tokens, i)})
			prevEnd = w.End
		}
		if seg.End > prevEnd {
			cues = append(cues, Cue{Start: prevEnd, End: seg.End, Text: plain})
		}
	}
	return cues
}

func highlightLine(tokens []string, active int) string {
	parts := make([]string, len(tokens))
	for i, token := range tokens {
		if i == active {
			parts[i] = highlightOpen + token + highlightClose
			continue
		}
		parts[i] = token
	}
	return strings.Join(parts, " ")
}

// SRT renders word-highlight cues in SubRip format.
func SRT(t *Transcript) string {
	var b strings.Builder
	for i, cue := range HighlightCues(t) {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, formatTimestamp(cue.Start, ","), formatTimestamp(cue.End, ","), cue.Text)
	}
	return b.String()
}

// VTT renders word-highlight cues in WebVTT format.
func VTT(t *Transcript) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, cue := range HighlightCues(t) {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", formatTimestamp(cue.Start, "."), formatTimestamp(cue.End, "."), cue.Text)
	}
	return b.String()
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm.
func formatTimestamp(seconds float64, sep string) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, secs, sep, millis)
}
