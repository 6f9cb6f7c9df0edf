package ext

import (
	"context"
	"log/slog"
)

// MacroModule returns the "macro" module converting between text and
// symbols.
func MacroModule() Module {
	const args = "the piped value, or exactly one argument"

	return Module{
		Name:        "macro",
		Description: "Conversion functions",
		Functions: []Function{
			{
				Name:        "convert_to_text",
				Description: "convert a value or argument to text",
				Args:        args,
				Pipe:        true,
				Fn:          convertToText,
			},
			{
				Name:        "convert_to_symbol",
				Description: "convert a value or argument to a non-empty symbol",
				Args:        args,
				Pipe:        true,
				Fn:          convertToSymbol,
			},
		},
	}
}

// single returns the piped value, or else the only argument.
func single(call *Call) (Value, error) {
	if call.Result != nil {
		return call.Result, nil
	}

	switch len(call.Args) {
	case 0:
		return nil, ErrArgument.With(
			slog.String("reason", "no piped value and no argument"),
		)
	case 1:
		return call.Args[0], nil
	default:
		return nil, ErrArgument.With(
			slog.String("reason", "too many arguments"),
			slog.Int("count", len(call.Args)),
		)
	}
}

func convertToText(_ context.Context, call *Call) (Value, error) {
	v, err := single(call)
	if err != nil {
		return nil, err
	}

	return Text(Concat(v)), nil
}

func convertToSymbol(_ context.Context, call *Call) (Value, error) {
	v, err := single(call)
	if err != nil {
		return nil, err
	}

	s := Concat(v)
	if s == "" {
		return nil, ErrArgument.With(
			slog.String("reason", "conversion produced an empty symbol"),
		)
	}

	return Symbol(s), nil
}
