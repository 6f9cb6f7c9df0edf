// Package log provides a leveled structured logger based on [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// Attributes are typed [slog.Attr] values:
//
//	logger.Info("render complete", slog.Int("passes", 3))
//
// The zero Logger discards all messages, so libraries accept a Logger through
// an option and log unconditionally.
//
// Package-level functions ([Info], [DebugContext], ...) use a default logger
// writing to standard error, reconfigured with [Config].
//
// # Levels
//
// [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn] and [LevelError].
// Trace sits below debug and is used for per-pass engine diagnostics.
//
// # Pretty output
//
// With [WithPretty] enabled, text records are rendered as colorized
// key=value lines and JSON records as indented objects. Colors are emitted
// only when the output is a terminal.
package log
