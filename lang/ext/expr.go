package ext

import (
	"context"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprModule returns the "expr" module evaluating expr-lang expressions.
func ExprModule() Module {
	return Module{
		Name:        "expr",
		Description: "Expression evaluation (expr-lang)",
		Functions: []Function{
			{
				Name: "eval",
				Description: "evaluate an expression; variables are in scope " +
					"and the piped value is bound to 'pipe'",
				Args: "one expression",
				Pipe: true,
				Fn:   evalExpr,
			},
		},
	}
}

func evalExpr(_ context.Context, call *Call) (Value, error) {
	if len(call.Args) != 1 {
		return nil, ErrArgument.With(
			slog.String("reason", "expected one expression"),
			slog.Int("count", len(call.Args)),
		)
	}

	source, err := resolve(call, call.Args[0])
	if err != nil {
		return nil, err
	}

	env := make(map[string]any)
	if call.Scope != nil {
		for k, v := range call.Scope.Vars() {
			env[k] = v
		}
	}

	env["pipe"] = pipeValue(call.Result)

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("expr", source))
	}

	out, err := vm.Run(program, env)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("expr", source))
	}

	return FromAny(out), nil
}

// pipeValue converts a piped value to a native Go value.
func pipeValue(v Value) any {
	switch v := v.(type) {
	case nil, Void:
		return nil
	case Text:
		return string(v)
	case Symbol:
		return string(v)
	case Number:
		return float64(v)
	case Bool:
		return bool(v)
	case Vector:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = pipeValue(e)
		}

		return out
	default:
		return nil
	}
}

// resolve returns the text of an argument: literal text as is, and the
// value of the variable a symbol names.
func resolve(call *Call, v Value) (string, error) {
	sym, ok := v.(Symbol)
	if !ok {
		return Concat(v), nil
	}

	if call.Scope != nil {
		if s, ok := call.Scope.Lookup(string(sym)); ok {
			return s, nil
		}
	}

	return "", ErrArgument.With(
		slog.String("reason", "undefined variable"),
		slog.String("name", string(sym)),
	)
}
