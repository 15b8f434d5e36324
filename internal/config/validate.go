package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateBuild(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	switch t.Backend {
	case BackendWhisperX:
	case BackendOpenAI:
		if t.OpenAIAPIKey == "" {
			return errors.New("transcription.openai_api_key must be set when transcription.backend is openai (or set OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("transcription.backend: unsupported value %q (want %q or %q)", t.Backend, BackendWhisperX, BackendOpenAI)
	}
	if t.BatchSize <= 0 {
		return errors.New("transcription.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateBuild() error {
	for key, value := range map[string]string{
		"build.stylesheet": c.Build.Stylesheet,
		"build.script":     c.Build.Script,
	} {
		if path.IsAbs(value) || value == ".." || strings.HasPrefix(value, "../") {
			return fmt.Errorf("%s must be relative to paths.static_dir, got %q", key, value)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
