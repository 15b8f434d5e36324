// Package transcript defines the transcript JSON contract shared by the
// transcription and page-build steps, and the exporters derived from it.
//
// A transcript holds an optional title and audio_url, a language code, and
// time-ordered segments that may carry word-level timestamps. The package
// renders the plain-text, word-timestamp, SRT and WebVTT artifacts (the
// subtitle formats use <u> word highlighting) and writes them next to the JSON
// under the audio file's stem.
package transcript
