package ext

import (
	"context"
	"strings"
	"unicode"
)

// TextModule returns the "text" module of string transformations.
//
// Each function transforms the piped value when there is one, descending
// into vectors. Otherwise it returns a vector of its transformed arguments.
// Symbols are transformed as names.
func TextModule() Module {
	const args = "any number (the piped value takes priority)"

	fn := func(name, desc string, f func(string) string) Function {
		return Function{
			Name:        name,
			Description: desc,
			Args:        args,
			Pipe:        true,
			Fn:          mapText(f),
		}
	}

	return Module{
		Name:        "text",
		Description: "String functions (UTF-8 aware)",
		Functions: []Function{
			fn("uppercase", "convert to upper case", strings.ToUpper),
			fn("lowercase", "convert to lower case", strings.ToLower),
			fn("ascii_uppercase", "convert ASCII letters to upper case", asciiUpper),
			fn("ascii_lowercase", "convert ASCII letters to lower case", asciiLower),
			fn("trim", "remove leading and trailing white space", strings.TrimSpace),
			fn("trim_start", "remove leading white space", trimStart),
			fn("trim_end", "remove trailing white space", trimEnd),
		},
	}
}

func mapText(f func(string) string) Func {
	return func(_ context.Context, call *Call) (Value, error) {
		if call.Result != nil {
			return mapValue(call.Result, f), nil
		}

		vec := make(Vector, len(call.Args))
		for i, a := range call.Args {
			vec[i] = mapValue(a, f)
		}

		return vec, nil
	}
}

func mapValue(v Value, f func(string) string) Value {
	switch v := v.(type) {
	case Text:
		return Text(f(string(v)))
	case Symbol:
		return Symbol(f(string(v)))
	case Vector:
		vec := make(Vector, len(v))
		for i, e := range v {
			vec[i] = mapValue(e, f)
		}

		return vec
	default:
		return v
	}
}

func asciiUpper(s string) string {
	return strings.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - 'a' + 'A'
		}

		return r
	}, s)
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r - 'A' + 'a'
		}

		return r
	}, s)
}

func trimStart(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }

func trimEnd(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }
