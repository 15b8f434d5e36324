// Package whisperx runs WhisperX as an external tool to produce transcripts
// with word-level timestamps.
//
// WhisperX is launched through uvx. It loads the audio, runs the Whisper
// model at the requested device and precision, then applies the
// language-specific alignment model. Its JSON output is read back into the
// shared transcript model. Unsupported devices, precisions or languages
// surface as external tool errors; there is no retry.
package whisperx
