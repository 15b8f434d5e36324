package pages

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"karaoke/internal/fileutil"
)

const manifestVersion = 1

// manifest is the set of output-relative, slash-separated paths a build wrote.
type manifest struct {
	files map[string]struct{}
}

type manifestFile struct {
	Version int      `json:"version"`
	Files   []string `json:"files"`
}

func newManifest() *manifest {
	return &manifest{files: make(map[string]struct{})}
}

func (m *manifest) add(rel string) {
	m.files[rel] = struct{}{}
}

func (m *manifest) sorted() []string {
	out := make([]string, 0, len(m.files))
	for rel := range m.files {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// missingFrom lists the entries of m that current does not contain.
func (m *manifest) missingFrom(current *manifest) []string {
	var stale []string
	for _, rel := range m.sorted() {
		if _, ok := current.files[rel]; !ok {
			stale = append(stale, rel)
		}
	}
	return stale
}

func (m *manifest) write(p string) error {
	data, err := json.MarshalIndent(manifestFile{Version: manifestVersion, Files: m.sorted()}, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFile(p, append(data, '\n'))
}

// readManifest loads a previous manifest. A missing file is an empty
// manifest. Entries that would escape the output tree are dropped.
func readManifest(p string) (*manifest, error) {
	m := newManifest()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return nil, err
	}
	var payload manifestFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for _, rel := range payload.Files {
		if safeRelative(rel) {
			m.add(rel)
		}
	}
	return m, nil
}

func safeRelative(rel string) bool {
	if rel == "" || strings.Contains(rel, `\`) || path.IsAbs(rel) {
		return false
	}
	clean := path.Clean(rel)
	if clean != rel || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return false
	}
	return rel != ManifestFile && rel != LockFile
}
