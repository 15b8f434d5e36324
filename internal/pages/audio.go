package pages

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindAudio returns the path of the audio file in dir whose stem equals stem.
// Any extension matches. When several files match, the lexicographically
// smallest name wins. A missing directory or no match yields "".
func FindAudio(dir, stem string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var candidates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := filepath.Ext(name)
		if ext == "" || strings.TrimSuffix(name, ext) != stem {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return "", nil
	}
	sort.Strings(candidates)
	return filepath.Join(dir, candidates[0]), nil
}
