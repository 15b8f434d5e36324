// Package preflight provides readiness checks for the files, directories,
// external tools and remote APIs the pipeline depends on.
//
// The CLI "karaoke check" command runs RunAll and reports each result. Checks
// follow the configuration: the uvx probe only runs for the whisperx backend
// and the API probe only for the openai backend.
package preflight
