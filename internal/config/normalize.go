package config

import (
	"fmt"
	"os"
	"path"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeBuild()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.template", &c.Paths.Template, defaultTemplate},
		{"paths.transcripts_dir", &c.Paths.TranscriptsDir, defaultTranscriptsDir},
		{"paths.audio_dir", &c.Paths.AudioDir, defaultAudioDir},
		{"paths.static_dir", &c.Paths.StaticDir, defaultStaticDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		expanded, err := expandPath(strings.TrimSpace(c.Paths.LogDir))
		if err != nil {
			return fmt.Errorf("paths.log_dir: %w", err)
		}
		c.Paths.LogDir = expanded
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Backend = strings.ToLower(strings.TrimSpace(t.Backend))
	if t.Backend == "" {
		t.Backend = defaultBackend
	}
	t.Model = strings.TrimSpace(t.Model)
	if t.Model == "" {
		t.Model = defaultModel
	}
	t.Language = strings.TrimSpace(t.Language)
	t.Device = strings.ToLower(strings.TrimSpace(t.Device))
	if t.Device == "" {
		t.Device = defaultDevice
	}
	if t.BatchSize == 0 {
		t.BatchSize = defaultBatchSize
	}
	t.ComputeType = strings.ToLower(strings.TrimSpace(t.ComputeType))
	if t.ComputeType == "" {
		t.ComputeType = defaultComputeType
	}
	t.UVXCommand = strings.TrimSpace(t.UVXCommand)
	if t.UVXCommand == "" {
		t.UVXCommand = defaultUVXCommand
	}
	t.Package = strings.TrimSpace(t.Package)
	if t.Package == "" {
		t.Package = defaultPackage
	}
	t.OpenAIAPIKey = strings.TrimSpace(t.OpenAIAPIKey)
	if t.OpenAIAPIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			t.OpenAIAPIKey = strings.TrimSpace(value)
		}
	}
	t.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(t.OpenAIBaseURL), "/")
	if t.OpenAIBaseURL == "" {
		t.OpenAIBaseURL = defaultOpenAIURL
	}
	t.OpenAIModel = strings.TrimSpace(t.OpenAIModel)
	if t.OpenAIModel == "" {
		t.OpenAIModel = defaultOpenAIModel
	}
}

func (c *Config) normalizeBuild() {
	c.Build.IndexTitle = strings.TrimSpace(c.Build.IndexTitle)
	if c.Build.IndexTitle == "" {
		c.Build.IndexTitle = defaultIndexTitle
	}
	c.Build.Stylesheet = cleanAssetPath(c.Build.Stylesheet, defaultStylesheet)
	c.Build.Script = cleanAssetPath(c.Build.Script, defaultScript)
}

func cleanAssetPath(value, fallback string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "\\", "/"))
	if value == "" {
		return fallback
	}
	return path.Clean(value)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
