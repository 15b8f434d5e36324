package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"karaoke/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose every path lives under a per-test temp
// directory. The template and static assets are seeded with minimal content.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Template = filepath.Join(base, "web", "templates", "transcript.html")
	cfgVal.Paths.TranscriptsDir = filepath.Join(base, "data", "transcripts")
	cfgVal.Paths.AudioDir = filepath.Join(base, "data", "audio")
	cfgVal.Paths.StaticDir = filepath.Join(base, "web", "static")
	cfgVal.Paths.OutputDir = filepath.Join(base, "docs")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	WriteText(t, cfgVal.Paths.Template, PageTemplate)
	WriteText(t, cfgVal.StylesheetPath(), "body { font-family: sans-serif; }\n")
	WriteText(t, cfgVal.ScriptPath(), "// karaoke\n")
	for _, dir := range []string{cfgVal.Paths.TranscriptsDir, cfgVal.Paths.AudioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// PageTemplate is the minimal page template seeded by NewConfig.
const PageTemplate = `<html><head><title>{title}</title><link rel="stylesheet" href="{stylesheet_src}"></head>
<body><h1>{title}</h1><audio src="{audio_src}"></audio><div id="transcript" data-json="{json_src}"></div><script src="{script_src}"></script></body></html>
`

// WithBackend selects the transcription backend on the test config.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.Backend = backend
	}
}

// WithOpenAI points the openai backend at baseURL with a test key.
func WithOpenAI(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.Backend = config.BackendOpenAI
		b.cfg.Transcription.OpenAIAPIKey = "sk-test"
		b.cfg.Transcription.OpenAIBaseURL = baseURL
	}
}

// WithBuildPolicy sets the prune and skip-invalid build switches.
func WithBuildPolicy(prune, skipInvalid bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Build.PruneStale = prune
		b.cfg.Build.SkipInvalid = skipInvalid
	}
}

// WithoutTemplate removes the seeded page template.
func WithoutTemplate() ConfigOption {
	return func(b *configBuilder) {
		if err := os.Remove(b.cfg.Paths.Template); err != nil {
			b.t.Fatalf("remove template: %v", err)
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, uvx is stubbed. The stub runs
// script when one is given and otherwise exits 0.
func WithStubbedBinaries(script string, names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"uvx"}
		}
		if script == "" {
			script = "#!/bin/sh\nexit 0\n"
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Paths.TranscriptsDir))
}
