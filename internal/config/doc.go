// Package config loads, normalizes, and validates karaoke configuration data.
//
// It supplies the convention-based defaults (data/transcripts, data/audio,
// web/templates, web/static, docs), expands user paths including tilde
// shortcuts, reads TOML files, and applies KARAOKE_* environment overrides.
// Commands receive a single injected Config instead of reading fixed paths, so
// every step can be pointed at temporary directories in tests.
package config
