package transcript

import (
	"fmt"
	"strings"
)

// PlainText renders one trimmed segment text per line.
func PlainText(t *Transcript) string {
	var b strings.Builder
	for _, seg := range t.Segments {
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteByte('\n')
	}
	return b.String()
}

// WordTimestamps renders one "[start - end] word" line per word entry.
// Segments without word-level data contribute nothing.
func WordTimestamps(t *Transcript) string {
	var b strings.Builder
	for _, seg := range t.Segments {
		for _, w := range seg.Words {
			fmt.Fprintf(&b, "[%.2f - %.2f] %s\n", w.Start, w.End, strings.TrimSpace(w.Word))
		}
	}
	return b.String()
}
