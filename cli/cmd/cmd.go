package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdio is the name that selects standard input or output.
const stdio = "-"

// openInputs returns a reader over the named files in order. Files named
// more than once, through any path or symlink, are read once. Standard
// input, if named, is read last.
func openInputs(names []string) (io.Reader, func(), error) {
	var (
		readers []io.Reader
		files   []*os.File
		seen    []os.FileInfo
		stdin   bool
	)

	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	for _, name := range names {
		if name == stdio {
			stdin = true

			continue
		}

		f, err := os.Open(name)
		if err != nil {
			closeAll()

			return nil, nil, ErrOpenInput.With(slog.String("path", name)).Wrap(err)
		}

		info, err := f.Stat()
		if err == nil && duplicate(seen, info) {
			_ = f.Close()

			continue
		}

		seen = append(seen, info)
		files = append(files, f)
		readers = append(readers, f)
	}

	if stdin || len(names) == 0 {
		readers = append(readers, os.Stdin)
	}

	return io.MultiReader(readers...), closeAll, nil
}

func duplicate(seen []os.FileInfo, info os.FileInfo) bool {
	for _, s := range seen {
		if s != nil && os.SameFile(s, info) {
			return true
		}
	}

	return false
}

// createOutput returns a writer for the named file, or standard output.
func createOutput(name string) (io.WriteCloser, error) {
	if name == "" || name == stdio {
		return nopCloser{os.Stdout}, nil
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, ErrWriteOutput.With(slog.String("path", name)).Wrap(err)
	}

	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// skipLine removes the first line of s, including its line feed.
func skipLine(s string) string {
	if _, rest, ok := strings.Cut(s, "\n"); ok {
		return rest
	}

	return ""
}
