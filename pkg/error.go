package pkg

import (
	"log/slog"
	"strings"
)

// Diagnostic is an error that carries its own message and attributes apart
// from the error it wraps.
type Diagnostic interface {
	error
	Msg() string
	Attrs() []slog.Attr
}

// Trace is the cause chain of an error, innermost first.
type Trace []error

// TraceOf flattens the cause chain of err. Errors joined with
// [errors.Join] are flattened in order. TraceOf(nil) is nil.
func TraceOf(err error) Trace {
	if err == nil {
		return nil
	}

	var t Trace

	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, wrapped := range e.Unwrap() {
			t = append(t, TraceOf(wrapped)...)
		}
	case interface{ Unwrap() error }:
		t = TraceOf(e.Unwrap())
	}

	return append(t, err)
}

// Error joins the messages of the chain with " <- ", innermost first.
func (t Trace) Error() string {
	msg := make([]string, len(t))
	for i, err := range t {
		msg[i] = err.Error()
	}

	return strings.Join(msg, " <- ")
}

// Unwrap returns the errors of the chain.
func (t Trace) Unwrap() []error { return t }

// Step is one level of a rendered trace.
type Step struct {
	Msg   string
	Attrs []slog.Attr
}

// Steps returns the chain outermost first, one step per diagnostic. A plain
// error's message already contains the errors it wraps, so plain errors
// directly below another plain error are omitted.
func (t Trace) Steps() []Step {
	var steps []Step

	for i := len(t) - 1; i >= 0; i-- {
		if d, ok := t[i].(Diagnostic); ok {
			steps = append(steps, Step{Msg: d.Msg(), Attrs: d.Attrs()})

			continue
		}

		if i < len(t)-1 {
			if _, ok := t[i+1].(Diagnostic); !ok {
				continue
			}
		}

		steps = append(steps, Step{Msg: t[i].Error()})
	}

	return steps
}
