// Package deps reports whether the external tools behind the transcription
// backends are installed.
package deps
