package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds = errors.New("index out of range")
	ErrNotTerminal = errors.New("standard input is not a terminal")
)
