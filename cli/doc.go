// Package cli contains the command line interface for moustache.
//
// # Usage
//
// Rendering is the default command:
//
//	moustache -i page.tpl -o page.html --var title=Home -r
//	echo 'Hello, {{ who }}!' | moustache --var who=World
//
// Other commands inspect templates and the extension registry:
//
//	moustache parts page.tpl --format json
//	moustache extensions
//	moustache repl
//
// # Configuration
//
// Flag values may be stored in a YAML file in the user configuration
// directory (e.g. ~/.config/moustache/config.yaml), written with
// "moustache init". Keys are flag names; command-line flags override them.
//
//	log-level: debug
//	reentrant: true
//	var:
//	  author: ardnew
//
// # Errors
//
// Errors are logged through the package logger. With --error-format they are
// printed instead as a colorized trace, outermost cause first.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof
//
// It adds --pprof-mode (allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread, trace) and --pprof-dir (default ~/.cache/moustache/pprof).
package cli
