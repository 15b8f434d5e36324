// Package main hosts the karaoke CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the two pipeline steps, transcribe
// and build, plus a transcript listing and configuration scaffolding. It
// centralizes configuration resolution, logger construction and run
// identifiers so subcommands only translate flags into calls on the
// internal packages.
package main
