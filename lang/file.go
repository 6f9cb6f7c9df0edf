package lang

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/readahead"
)

// Search types of the find statement.
const (
	searchFiles       = "files"
	searchDirectories = "directories"
	searchAll         = "all"
)

// ReadAll reads r to the end through an asynchronous read-ahead buffer.
func ReadAll(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err)
	}

	return string(data), nil
}

// ReadFile reads the named file with [ReadAll].
func ReadFile(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", ErrReadInput.Wrap(err).With(slog.String("path", name))
	}
	defer f.Close()

	return ReadAll(f)
}

// path resolves a template path against the base directory.
func (e *Engine) path(name string) string {
	if e.baseDir == "" || filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(e.baseDir, name)
}

func stat(name, display string) (fs.FileInfo, error) {
	info, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrPathNotFound.With(slog.String("path", display))
	}

	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("path", display))
	}

	return info, nil
}

// include handles
//
//	include path
//
// It emits the content of a regular file as generated text.
func (s *stmt) include() ([]Part, int, error) {
	name, err := s.value("path")
	if err != nil {
		return nil, 0, err
	}

	if err := s.done(); err != nil {
		return nil, 0, err
	}

	full := s.engine.path(name)

	info, err := stat(full, name)
	if err != nil {
		return nil, 0, ErrInclude.Wrap(err)
	}

	if !info.Mode().IsRegular() {
		return nil, 0, ErrInclude.Wrap(
			ErrNotRegularFile.With(slog.String("path", name)),
		)
	}

	content, err := ReadFile(full)
	if err != nil {
		return nil, 0, ErrInclude.Wrap(err)
	}

	s.engine.logger.DebugContext(s.ctx, "include",
		slog.String("path", name),
		slog.Int("bytes", len(content)),
	)

	return []Part{Generated(content)}, 0, nil
}

// find handles
//
//	find (files|directories|all) in pattern [! separator] to variable
//	find (files|directories|all) in pattern to variable [! separator]
//
// If the pattern names a regular file, the variable is set to the pattern.
// Otherwise the pattern names a directory, optionally followed by a single
// '*' wildcard: the directory is the text before the '*', and entries are
// kept if their path starts with the text before it and ends with the text
// after it. Matching paths are joined with the separator (a newline by
// default).
func (s *stmt) find() ([]Part, int, error) {
	search, err := s.symbol("search type")
	if err != nil {
		return nil, 0, err
	}

	switch search {
	case searchFiles, searchDirectories, searchAll:
	default:
		types := []string{searchFiles, searchDirectories, searchAll}

		return nil, 0, ErrUnexpectedToken.With(
			append(
				[]slog.Attr{
					slog.String("search", search),
					slog.String("expected", strings.Join(types, ", ")),
				},
				hint(search, types)...,
			)...,
		)
	}

	if err := s.keyword("in"); err != nil {
		return nil, 0, err
	}

	pattern, err := s.value("pattern")
	if err != nil {
		return nil, 0, err
	}

	sep, separated := "\n", s.optional(TokenExclamation)
	if separated {
		if sep, err = s.decoded("separator"); err != nil {
			return nil, 0, err
		}
	}

	if err := s.keyword("to"); err != nil {
		return nil, 0, err
	}

	dest, err := s.symbol("destination")
	if err != nil {
		return nil, 0, err
	}

	if !separated && s.optional(TokenExclamation) {
		if sep, err = s.decoded("separator"); err != nil {
			return nil, 0, err
		}
	}

	if err := s.done(); err != nil {
		return nil, 0, err
	}

	found, err := s.engine.find(search, pattern, sep)
	if err != nil {
		return nil, 0, ErrFind.Wrap(err)
	}

	return nil, 0, s.env.Set(dest, found)
}

func (e *Engine) find(search, pattern, sep string) (string, error) {
	if pattern == "" {
		return "", ErrEmptyPattern
	}

	dir, left, right, wild := pattern, "", "", false
	if i := strings.IndexByte(pattern, '*'); i >= 0 {
		dir, left, right, wild = pattern[:i], pattern[:i], pattern[i+1:], true
		if dir == "" {
			dir = "./"
		}
	}

	full := e.path(dir)

	info, err := stat(full, dir)
	if err != nil {
		return "", err
	}

	if info.Mode().IsRegular() {
		return pattern, nil
	}

	if !info.IsDir() {
		return "", ErrNotRegularFile.With(
			slog.String("path", dir),
			slog.String("reason", "neither a directory nor a regular file"),
		)
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return "", ErrReadInput.Wrap(err).With(slog.String("path", dir))
	}

	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	var found []string

	for _, entry := range entries {
		name := dir + entry.Name()
		if wild && (!strings.HasPrefix(name, left) || !strings.HasSuffix(name, right)) {
			continue
		}

		info, err := os.Stat(filepath.Join(full, entry.Name()))
		if err != nil {
			continue
		}

		switch {
		case search == searchFiles && !info.Mode().IsRegular():
			continue
		case search == searchDirectories && !info.IsDir():
			continue
		}

		found = append(found, name)
	}

	e.logger.Debug("find",
		slog.String("pattern", pattern),
		slog.Int("matches", len(found)),
	)

	return strings.Join(found, sep), nil
}
