package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
)

// Predefined errors (sentinel values).
var (
	// Segmentation.
	ErrUnauthorizedTransition = NewError("unauthorized delimiter transition")
	ErrUnterminatedRegion     = NewError("unterminated region")

	// Lexical.
	ErrUnterminatedText = NewError("unterminated quoted text")
	ErrMisplacedEscape  = NewError("escape outside quoted text")

	// Expression.
	ErrExpression        = NewError("expression failed")
	ErrEmptyExpression   = NewError("empty expression")
	ErrOperatorPlacement = NewError("misplaced operator")
	ErrMissingOperator   = NewError("missing operator between terms")
	ErrUnexpectedToken   = NewError("unexpected token")

	// Environment.
	ErrUndefinedVariable = NewError("undefined variable")
	ErrBrokenIndirection = NewError("broken indirection")
	ErrUndefinedBlock    = NewError("undefined block")

	// Condition.
	ErrEmptyCondition    = NewError("empty condition")
	ErrMissingComparator = NewError("missing comparator")
	ErrMissingOperand    = NewError("missing operand")
	ErrInvalidOperand    = NewError("invalid operand")
	ErrUnmatchedGroup    = NewError("unmatched group")
	ErrInvalidOperator   = NewError("invalid operator")

	// Statement.
	ErrStatement           = NewError("statement failed")
	ErrEmptyStatement      = NewError("empty statement")
	ErrUnknownStatement    = NewError("unknown statement")
	ErrUnfinishedBlock     = NewError("unfinished block")
	ErrIncompleteStatement = NewError("incomplete statement")

	// Collaborators.
	ErrInclude            = NewError("include failed")
	ErrPathNotFound       = NewError("path not found")
	ErrNotRegularFile     = NewError("not a regular file")
	ErrFind               = NewError("find failed")
	ErrEmptyPattern       = NewError("empty path pattern (use '.' for the current directory)")
	ErrExtension          = NewError("extension failed")
	ErrExtensionsDisabled = NewError("extensions are disabled")
	ErrCast               = NewError("cannot cast extension result")

	// Driver.
	ErrReadInput      = NewError("failed to read input")
	ErrExpansionCycle = NewError("expansion does not terminate")
	ErrTooManyPasses  = NewError("too many passes")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors form a chain through their wrapped cause, outermost context first.
// Two errors are equal under [errors.Is] when their messages are equal, so
// an error derived from a sentinel with [Error.With] or [Error.Wrap] still
// matches that sentinel.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The format is "<msg> key=value ...: <err>", omitting empty components.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.msg)

	for _, a := range e.attrs {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(a.Key)
		sb.WriteByte('=')
		sb.WriteString(quoteAttr(a.Value.String()))
	}

	if e.err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

func quoteAttr(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
		return `"` + strings.NewReplacer(
			`"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`,
		).Replace(s) + `"`
	}

	return s
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// Msg returns the message of this step of the chain.
func (e *Error) Msg() string { return e.msg }

// Attrs returns a copy of the attributes of this step of the chain.
func (e *Error) Attrs() []slog.Attr { return slices.Clone(e.attrs) }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// At adds the byte offset at which the error was detected.
func (e *Error) At(offset int) *Error {
	return e.With(slog.Int("offset", offset))
}
