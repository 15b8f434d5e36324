package pages

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"karaoke/internal/config"
	"karaoke/internal/fileutil"
	"karaoke/internal/logging"
	"karaoke/internal/services"
	"karaoke/internal/transcript"
)

// Output tree names.
const (
	AssetsDir    = "assets"
	IndexFile    = "index.html"
	LockFile     = ".karaoke.lock"
	ManifestFile = ".karaoke-manifest.json"
)

// Options describes the inputs and policy for one build.
type Options struct {
	TemplatePath   string
	TranscriptsDir string
	AudioDir       string
	StylesheetPath string
	ScriptPath     string
	OutputDir      string
	IndexTitle     string
	PruneStale     bool
	SkipInvalid    bool
}

// OptionsFromConfig maps the configured paths and build policy to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TemplatePath:   cfg.Paths.Template,
		TranscriptsDir: cfg.Paths.TranscriptsDir,
		AudioDir:       cfg.Paths.AudioDir,
		StylesheetPath: cfg.StylesheetPath(),
		ScriptPath:     cfg.ScriptPath(),
		OutputDir:      cfg.Paths.OutputDir,
		IndexTitle:     cfg.Build.IndexTitle,
		PruneStale:     cfg.Build.PruneStale,
		SkipInvalid:    cfg.Build.SkipInvalid,
	}
}

// Page describes one generated transcript page.
type Page struct {
	Stem     string
	Title    string
	File     string
	Audio    string
	JSON     string
	Language string
	Segments int
	Words    int
}

// Skipped records a transcript left out of the build.
type Skipped struct {
	File   string
	Reason string
}

// Result summarises a completed build.
type Result struct {
	Pages   []Page
	Index   string
	Pruned  []string
	Skipped []Skipped
}

// Builder renders transcript pages into an output tree.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// NewBuilder constructs a page builder.
func NewBuilder(opts Options, logger *slog.Logger) *Builder {
	if strings.TrimSpace(opts.IndexTitle) == "" {
		opts.IndexTitle = "Transcripts"
	}
	return &Builder{opts: opts, logger: logging.NewComponentLogger(logger, "pages")}
}

type sharedAssets struct {
	stylesheet string
	script     string
}

type source struct {
	stem       string
	name       string
	path       string
	transcript *transcript.Transcript
}

// Build generates every page, the index and the manifest. Missing inputs
// fail before anything is written.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	tmpl, err := b.readTemplate()
	if err != nil {
		return nil, err
	}
	for _, asset := range []string{b.opts.StylesheetPath, b.opts.ScriptPath} {
		if err := requireFile(asset, "static asset"); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	sources, err := b.loadTranscripts(ctx, result)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(b.opts.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "pages", "create output", "Failed to create output directory", err)
	}
	lock := flock.New(filepath.Join(b.opts.OutputDir, LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pages", "lock", "Failed to lock output directory", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "pages", "lock", fmt.Sprintf("Another build holds %s", lock.Path()), nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			b.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	for _, sub := range []string{"css", "js", "data", "audio"} {
		if err := os.MkdirAll(filepath.Join(b.opts.OutputDir, AssetsDir, sub), 0o755); err != nil {
			return nil, services.Wrap(services.ErrTransient, "pages", "create assets", "Failed to create asset directories", err)
		}
	}

	produced := newManifest()
	var shared sharedAssets
	for _, asset := range []struct {
		src, sub string
		rel      *string
	}{
		{b.opts.StylesheetPath, "css", &shared.stylesheet},
		{b.opts.ScriptPath, "js", &shared.script},
	} {
		rel := path.Join(AssetsDir, asset.sub, filepath.Base(asset.src))
		if err := fileutil.CopyFile(asset.src, b.outputPath(rel)); err != nil {
			return nil, services.Wrap(services.ErrTransient, "pages", "copy static", "Failed to copy "+filepath.Base(asset.src), err)
		}
		produced.add(rel)
		*asset.rel = rel
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := b.renderPage(services.WithTranscript(ctx, src.stem), tmpl, shared, src, produced)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, page)
	}

	index, err := renderIndex(b.opts.IndexTitle, shared.stylesheet, result.Pages)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pages", "render index", "Failed to render index", err)
	}
	result.Index = b.outputPath(IndexFile)
	if err := fileutil.WriteFile(result.Index, index); err != nil {
		return nil, services.Wrap(services.ErrTransient, "pages", "write index", "Failed to write index", err)
	}
	produced.add(IndexFile)

	manifestPath := b.outputPath(ManifestFile)
	previous, err := readManifest(manifestPath)
	if err != nil {
		logging.WarnWithContext(ctx, b.logger, "previous build manifest unreadable", "manifest_unreadable",
			logging.String("path", manifestPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale files from earlier builds will not be pruned"),
		)
		previous = newManifest()
	}
	stale := b.keepReferenced(ctx, previous.missingFrom(produced), result.Pages)
	if b.opts.PruneStale {
		result.Pruned = b.prune(ctx, stale)
	} else if len(stale) > 0 {
		b.logger.InfoContext(ctx, "stale files left in place",
			logging.Int("count", len(stale)),
			logging.String("hint", "rerun with --prune to remove them"),
		)
	}
	// Files still on disk stay tracked so a later pruning build can find them.
	for _, rel := range stale {
		if _, err := os.Stat(b.outputPath(rel)); err == nil {
			produced.add(rel)
		}
	}
	if err := produced.write(manifestPath); err != nil {
		return nil, services.Wrap(services.ErrTransient, "pages", "write manifest", "Failed to write build manifest", err)
	}

	b.logger.InfoContext(ctx, "build completed",
		logging.Int("pages", len(result.Pages)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("pruned", len(result.Pruned)),
		logging.String("output_dir", b.opts.OutputDir),
	)
	return result, nil
}

func (b *Builder) readTemplate() (string, error) {
	if err := requireFile(b.opts.TemplatePath, "template"); err != nil {
		return "", err
	}
	data, err := os.ReadFile(b.opts.TemplatePath)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "pages", "read template", "Failed to read template", err)
	}
	return string(data), nil
}

func requireFile(p, what string) error {
	info, err := os.Stat(p)
	if err == nil && !info.IsDir() {
		return nil
	}
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return &services.ServiceError{
			Marker:    services.ErrNotFound,
			Kind:      services.ErrorKindMissingInput,
			Operation: "build",
			Message:   fmt.Sprintf("%s not found: %s", what, p),
		}
	}
	return services.Wrap(services.ErrTransient, "pages", "stat", "Failed to inspect "+what, err)
}

// loadTranscripts parses every transcript in filename order.
func (b *Builder) loadTranscripts(ctx context.Context, result *Result) ([]source, error) {
	matches, err := filepath.Glob(filepath.Join(b.opts.TranscriptsDir, "*.json"))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pages", "list transcripts", "Invalid transcript directory", err)
	}
	if len(matches) == 0 {
		logging.WarnWithContext(ctx, b.logger, "no transcripts found", "no_transcripts",
			logging.String("dir", b.opts.TranscriptsDir),
			logging.String(logging.FieldErrorHint, "run karaoke transcribe first"),
			logging.String(logging.FieldImpact, "index will be empty"),
		)
	}
	sort.Strings(matches)

	sources := make([]source, 0, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := filepath.Base(match)
		t, err := transcript.Load(match)
		if err != nil {
			if !b.opts.SkipInvalid {
				return nil, services.Wrap(services.ErrValidation, "pages", "load transcript", "Invalid transcript "+name, err)
			}
			logging.WarnWithContext(ctx, b.logger, "skipping invalid transcript", "transcript_invalid",
				logging.String("file", name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix or regenerate the transcript JSON"),
				logging.String(logging.FieldImpact, "no page generated for this transcript"),
			)
			result.Skipped = append(result.Skipped, Skipped{File: name, Reason: err.Error()})
			continue
		}
		sources = append(sources, source{
			stem:       transcript.Stem(name),
			name:       name,
			path:       match,
			transcript: t,
		})
	}
	return sources, nil
}

func (b *Builder) renderPage(ctx context.Context, tmpl string, shared sharedAssets, src source, produced *manifest) (Page, error) {
	page := Page{
		Stem:     src.stem,
		Title:    src.transcript.DisplayTitle(src.stem),
		File:     src.stem + ".html",
		Language: transcript.NormalizeLanguage(src.transcript.Language),
		Segments: len(src.transcript.Segments),
		Words:    src.transcript.WordCount(),
	}

	audio, local, err := b.resolveAudio(ctx, src)
	if err != nil {
		return Page{}, err
	}
	page.Audio = audio
	audioSrc := audio
	if local {
		produced.add(audio)
		audioSrc = assetURL(audio)
	}

	page.JSON = path.Join(AssetsDir, "data", src.name)
	if _, err := fileutil.MirrorFile(src.path, b.outputPath(page.JSON)); err != nil {
		return Page{}, services.Wrap(services.ErrTransient, "pages", "copy transcript", "Failed to copy "+src.name, err)
	}
	produced.add(page.JSON)

	html := renderTemplate(tmpl, pageValues{
		Title:      page.Title,
		AudioSrc:   audioSrc,
		JSONSrc:    assetURL(page.JSON),
		Stylesheet: assetURL(shared.stylesheet),
		Script:     assetURL(shared.script),
	})
	if err := fileutil.WriteFile(b.outputPath(page.File), []byte(html)); err != nil {
		return Page{}, services.Wrap(services.ErrTransient, "pages", "write page", "Failed to write "+page.File, err)
	}
	produced.add(page.File)

	b.logger.DebugContext(ctx, "page generated",
		logging.String("page", page.File),
		logging.String("audio", page.Audio),
		logging.String("title", page.Title),
	)
	return page, nil
}

// resolveAudio returns the audio reference for a page: the explicit
// audio_url verbatim, or the copied same-stem audio file, or "". local is
// true when the reference points at a file this build copied.
func (b *Builder) resolveAudio(ctx context.Context, src source) (ref string, local bool, err error) {
	if explicit := strings.TrimSpace(src.transcript.AudioURL); explicit != "" {
		return src.transcript.AudioURL, false, nil
	}
	found, err := FindAudio(b.opts.AudioDir, src.stem)
	if err != nil {
		return "", false, services.Wrap(services.ErrTransient, "pages", "find audio", "Failed to scan audio directory", err)
	}
	if found == "" {
		logging.WarnWithContext(ctx, b.logger, "no audio for transcript", "audio_missing",
			logging.String("stem", src.stem),
			logging.String("audio_dir", b.opts.AudioDir),
			logging.String(logging.FieldErrorHint, "add "+src.stem+".<ext> to the audio directory or set audio_url"),
			logging.String(logging.FieldImpact, "page renders without playable audio"),
		)
		return "", false, nil
	}
	rel := path.Join(AssetsDir, "audio", filepath.Base(found))
	copied, err := fileutil.MirrorFile(found, b.outputPath(rel))
	if err != nil {
		return "", false, services.Wrap(services.ErrTransient, "pages", "copy audio", "Failed to copy "+filepath.Base(found), err)
	}
	if !copied {
		b.logger.DebugContext(ctx, "audio unchanged; copy skipped", logging.String("audio", rel))
	}
	return rel, true, nil
}

// keepReferenced drops stale entries that a current page still points at
// through an explicit audio_url.
func (b *Builder) keepReferenced(ctx context.Context, stale []string, pages []Page) []string {
	if len(stale) == 0 {
		return stale
	}
	referenced := make(map[string]struct{})
	for _, page := range pages {
		if rel, ok := outputRelative(page.Audio); ok {
			referenced[rel] = struct{}{}
		}
	}
	kept := stale[:0]
	for _, rel := range stale {
		if _, ok := referenced[rel]; ok {
			b.logger.DebugContext(ctx, "stale file still referenced by audio_url", logging.String("path", rel))
			continue
		}
		kept = append(kept, rel)
	}
	return kept
}

// outputRelative resolves a page reference to a slash-separated path inside
// the output tree. URLs with a scheme or host, absolute paths and paths that
// climb out of the tree are not local.
func outputRelative(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" || strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	cleaned := path.Clean(u.Path)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}

func (b *Builder) outputPath(rel string) string {
	return filepath.Join(b.opts.OutputDir, filepath.FromSlash(rel))
}

func (b *Builder) prune(ctx context.Context, stale []string) []string {
	removed := make([]string, 0, len(stale))
	for _, rel := range stale {
		target := b.outputPath(rel)
		if err := os.Remove(target); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			logging.WarnWithContext(ctx, b.logger, "failed to prune stale file", "prune_failed",
				logging.String("path", target),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output directory permissions"),
			)
			continue
		}
		b.logger.InfoContext(ctx, "pruned stale file", logging.String("path", rel))
		removed = append(removed, rel)
	}
	return removed
}
