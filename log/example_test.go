package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/moustache/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Info("render complete", slog.Int("passes", 2))
	// Output:
	// level=INFO msg="render complete" passes=2
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Warn("include skipped", slog.String("path", "a.txt"))
	// Output:
	// {"level":"WARN","msg":"include skipped","path":"a.txt"}
}
