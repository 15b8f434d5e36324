// Package logging assembles structured slog loggers used across the karaoke
// commands.
//
// It owns the console and JSON handlers, the optional JSON log file under
// paths.log_dir, and the fan-out handler that stamps run_id, step and
// transcript fields from the context onto every record logged with the
// *Context methods. The package also provides a no-op logger for tests.
package logging
