// Package transcription drives the transcription step: it checks the audio
// input, hands it to a pluggable Engine and writes the transcript artifacts
// (JSON, SRT, VTT, plain text and word timestamps) next to each other.
package transcription
