// Package services defines shared utilities consumed by the pipeline steps and
// the external speech-to-text integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, step names, and the
//     transcript being processed for logging.
//   - Structured error markers plus the Wrap helper that sort failures into
//     missing input, external tool, and malformed data.
//
// Engine implementations live in subpackages (whisperx, openai).
package services
