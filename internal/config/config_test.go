package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"karaoke/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, config.EnvPrefix) {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	t.Setenv("OPENAI_API_KEY", "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "karaoke.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "absent.toml")

	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false")
	}
	if path != missing {
		t.Fatalf("path = %q", path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cwd, "web", "templates", "transcript.html"); cfg.Paths.Template != want {
		t.Fatalf("template = %q, want %q", cfg.Paths.Template, want)
	}
	if want := filepath.Join(cwd, "docs"); cfg.Paths.OutputDir != want {
		t.Fatalf("output = %q, want %q", cfg.Paths.OutputDir, want)
	}
	if cfg.Transcription.Backend != config.BackendWhisperX || cfg.Transcription.Model != "small" {
		t.Fatalf("unexpected transcription defaults %+v", cfg.Transcription)
	}
	if cfg.Transcription.BatchSize != 8 || cfg.Transcription.ComputeType != "float32" || cfg.Transcription.Device != config.DeviceAuto {
		t.Fatalf("unexpected transcription defaults %+v", cfg.Transcription)
	}
	if cfg.StylesheetPath() != filepath.Join(cwd, "web", "static", "css", "style.css") {
		t.Fatalf("stylesheet path = %q", cfg.StylesheetPath())
	}
}

func TestLoadFileAndNormalize(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `
[paths]
output_dir = "~/site"
log_dir = "~/logs"

[transcription]
backend = " WhisperX "
device = "CUDA"
compute_type = "FLOAT16"
batch_size = 0

[build]
stylesheet = "css\\theme.css"
index_title = "  "

[logging]
format = "JSON"
level = "Debug"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Paths.OutputDir != filepath.Join(home, "site") {
		t.Fatalf("output dir = %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.LogDir != filepath.Join(home, "logs") {
		t.Fatalf("log dir = %q", cfg.Paths.LogDir)
	}
	tr := cfg.Transcription
	if tr.Backend != "whisperx" || tr.Device != "cuda" || tr.ComputeType != "float16" || tr.BatchSize != 8 {
		t.Fatalf("transcription not normalised: %+v", tr)
	}
	if cfg.Build.Stylesheet != "css/theme.css" || cfg.Build.IndexTitle != "Transcripts" {
		t.Fatalf("build not normalised: %+v", cfg.Build)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalised: %+v", cfg.Logging)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[transcription]\nmodel = \"small\"\n")
	out := t.TempDir()
	t.Setenv("KARAOKE_TRANSCRIPTION_MODEL", "large-v3")
	t.Setenv("KARAOKE_TRANSCRIPTION_BATCH_SIZE", "4")
	t.Setenv("KARAOKE_PATHS_OUTPUT_DIR", out)
	t.Setenv("KARAOKE_BUILD_PRUNE_STALE", "true")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transcription.Model != "large-v3" || cfg.Transcription.BatchSize != 4 {
		t.Fatalf("env overrides not applied: %+v", cfg.Transcription)
	}
	if cfg.Paths.OutputDir != out {
		t.Fatalf("output dir = %q", cfg.Paths.OutputDir)
	}
	if !cfg.Build.PruneStale {
		t.Fatal("expected prune_stale from environment")
	}
}

func TestOpenAIKeyFallback(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[transcription]\nbackend = \"openai\"\n")

	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "openai_api_key") {
		t.Fatalf("expected missing key error, got %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transcription.OpenAIAPIKey != "sk-from-env" {
		t.Fatalf("api key = %q", cfg.Transcription.OpenAIAPIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"backend", "[transcription]\nbackend = \"vosk\"\n", "transcription.backend"},
		{"batch size", "[transcription]\nbatch_size = -2\n", "batch_size"},
		{"log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"log level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"escaping stylesheet", "[build]\nstylesheet = \"../secret.css\"\n", "build.stylesheet"},
		{"absolute script", "[build]\nscript = \"/etc/passwd\"\n", "build.script"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	clearEnv(t)
	if _, _, _, err := config.Load(writeConfig(t, "[paths\n")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSampleConfigLoads(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists || cfg.Build.IndexTitle != "Transcripts" {
		t.Fatalf("unexpected sample config %+v", cfg.Build)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := config.Default()
	cfg.Build.IndexTitle = "Episodes"
	rendered, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(rendered, "index_title = 'Episodes'") && !strings.Contains(rendered, `index_title = "Episodes"`) {
		t.Fatalf("encoded config missing index title:\n%s", rendered)
	}
	loaded, _, _, err := config.Load(writeConfig(t, rendered))
	if err != nil {
		t.Fatalf("Load encoded: %v", err)
	}
	if loaded.Build.IndexTitle != "Episodes" {
		t.Fatalf("index title = %q", loaded.Build.IndexTitle)
	}
}

func TestEnsureDirectoriesCreatesLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs", "nested")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.LogDir); err != nil || !info.IsDir() {
		t.Fatalf("log dir not created: %v", err)
	}
}
