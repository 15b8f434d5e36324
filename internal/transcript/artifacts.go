package transcript

import (
	"fmt"
	"os"
	"path/filepath"

	"karaoke/internal/fileutil"
)

// Artifacts lists the files written for one transcribed audio file.
type Artifacts struct {
	JSON  string
	SRT   string
	VTT   string
	Text  string
	Words string
}

// Paths returns the artifact paths in write order.
func (a Artifacts) Paths() []string {
	return []string{a.JSON, a.SRT, a.VTT, a.Text, a.Words}
}

// ArtifactPaths derives the artifact names for stem inside dir.
func ArtifactPaths(dir, stem string) Artifacts {
	return Artifacts{
		JSON:  filepath.Join(dir, stem+".json"),
		SRT:   filepath.Join(dir, stem+".srt"),
		VTT:   filepath.Join(dir, stem+".vtt"),
		Text:  filepath.Join(dir, stem+".txt"),
		Words: filepath.Join(dir, stem+"_words.txt"),
	}
}

// WriteArtifacts writes the structured JSON, both subtitle formats, the plain
// text and the word listing for t. Each file is replaced atomically; existing
// files are overwritten.
func WriteArtifacts(dir, stem string, t *Transcript) (Artifacts, error) {
	paths := ArtifactPaths(dir, stem)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return paths, fmt.Errorf("create transcript directory: %w", err)
	}

	payload, err := t.Marshal()
	if err != nil {
		return paths, fmt.Errorf("encode transcript: %w", err)
	}

	outputs := []struct {
		path string
		data []byte
	}{
		{paths.JSON, payload},
		{paths.SRT, []byte(SRT(t))},
		{paths.VTT, []byte(VTT(t))},
		{paths.Text, []byte(PlainText(t))},
		{paths.Words, []byte(WordTimestamps(t))},
	}
	for _, out := range outputs {
		if err := fileutil.WriteFile(out.path, out.data); err != nil {
			return paths, fmt.Errorf("write %s: %w", filepath.Base(out.path), err)
		}
	}
	return paths, nil
}
