package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvPrefix namespaces every environment override, e.g. KARAOKE_TRANSCRIPTION_MODEL.
const EnvPrefix = "KARAOKE_"

// Paths contains the convention-based input and output locations.
type Paths struct {
	Template       string `toml:"template" env:"TEMPLATE"`
	TranscriptsDir string `toml:"transcripts_dir" env:"TRANSCRIPTS_DIR"`
	AudioDir       string `toml:"audio_dir" env:"AUDIO_DIR"`
	StaticDir      string `toml:"static_dir" env:"STATIC_DIR"`
	OutputDir      string `toml:"output_dir" env:"OUTPUT_DIR"`
	LogDir         string `toml:"log_dir" env:"LOG_DIR"`
}

// Transcription contains settings for the speech-to-text engines.
type Transcription struct {
	Backend       string `toml:"backend" env:"BACKEND"`
	Model         string `toml:"model" env:"MODEL"`
	Language      string `toml:"language" env:"LANGUAGE"`
	Device        string `toml:"device" env:"DEVICE"`
	BatchSize     int    `toml:"batch_size" env:"BATCH_SIZE"`
	ComputeType   string `toml:"compute_type" env:"COMPUTE_TYPE"`
	UVXCommand    string `toml:"uvx_command" env:"UVX_COMMAND"`
	Package       string `toml:"package" env:"PACKAGE"`
	OpenAIAPIKey  string `toml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `toml:"openai_base_url" env:"OPENAI_BASE_URL"`
	OpenAIModel   string `toml:"openai_model" env:"OPENAI_MODEL"`
}

// Build contains settings for static page generation.
type Build struct {
	PruneStale  bool   `toml:"prune_stale" env:"PRUNE_STALE"`
	SkipInvalid bool   `toml:"skip_invalid" env:"SKIP_INVALID"`
	IndexTitle  string `toml:"index_title" env:"INDEX_TITLE"`
	Stylesheet  string `toml:"stylesheet" env:"STYLESHEET"`
	Script      string `toml:"script" env:"SCRIPT"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"FORMAT"`
	Level  string `toml:"level" env:"LEVEL"`
}

// Config encapsulates all configuration values for the karaoke pipeline.
//
// Configuration sections by subsystem:
//   - Paths: template, transcript, audio, static asset and output directories
//   - Transcription: engine selection and model parameters
//   - Build: page generation policy (pruning, per-item isolation, index title)
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths" envPrefix:"PATHS_"`
	Transcription Transcription `toml:"transcription" envPrefix:"TRANSCRIPTION_"`
	Build         Build         `toml:"build" envPrefix:"BUILD_"`
	Logging       Logging       `toml:"logging" envPrefix:"LOGGING_"`
}

// DefaultConfigPath returns the absolute path to the per-user configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/karaoke/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. When no file exists the defaults are used.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, "", false, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Normalize expands paths and fills blank values on a config built in code.
func (c *Config) Normalize() error {
	return c.normalize()
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("karaoke.toml")
	if err != nil {
		return "", false, err
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return projectPath, false, nil
}

// EnsureDirectories creates the log directory when one is configured. The
// transcript and output directories are created by the steps that write them.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// StylesheetPath returns the absolute source path of the shared stylesheet.
func (c *Config) StylesheetPath() string {
	return filepath.Join(c.Paths.StaticDir, filepath.FromSlash(c.Build.Stylesheet))
}

// ScriptPath returns the absolute source path of the shared playback script.
func (c *Config) ScriptPath() string {
	return filepath.Join(c.Paths.StaticDir, filepath.FromSlash(c.Build.Script))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	encoder := toml.NewEncoder(&b)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
