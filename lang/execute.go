package lang

import (
	"log/slog"
	"strings"

	"github.com/ardnew/moustache/lang/ext"
)

// execute handles
//
//	execute key = module.function(args...) ('|' module.function(args...))*
//
// Each stage receives the value returned by the stage before it. The final
// value is cast to a string and assigned to key.
func (s *stmt) execute() ([]Part, int, error) {
	reg := s.engine.registry
	if reg == nil {
		return nil, 0, ErrExtensionsDisabled
	}

	key, err := s.symbol("key")
	if err != nil {
		return nil, 0, err
	}

	if err := s.expect(TokenEqual); err != nil {
		return nil, 0, err
	}

	var result ext.Value

	for {
		name, err := s.symbol("function")
		if err != nil {
			return nil, 0, err
		}

		mod, fn, ok := strings.Cut(name, ".")
		if !ok || mod == "" || fn == "" {
			return nil, 0, ErrUnexpectedToken.With(
				slog.String("function", name),
				slog.String("expected", "module.function"),
			)
		}

		args, err := s.arguments()
		if err != nil {
			return nil, 0, err
		}

		result, err = reg.Execute(s.ctx, mod, fn, &ext.Call{
			Result: result,
			Args:   args,
			Scope:  s.env,
		})
		if err != nil {
			return nil, 0, ErrExtension.
				With(slog.String("function", name)).
				Wrap(err)
		}

		if _, more := s.peek(); !more {
			break
		}

		if err := s.expect(TokenPipe); err != nil {
			return nil, 0, err
		}
	}

	val, err := ext.Cast(result, s.env)
	if err != nil {
		return nil, 0, ErrCast.Wrap(err)
	}

	return nil, 0, s.env.Set(key, val)
}

// arguments consumes a parenthesized list of Text and Symbol arguments.
func (s *stmt) arguments() ([]ext.Value, error) {
	if err := s.expect(TokenOpenParen); err != nil {
		return nil, err
	}

	var args []ext.Value

	for {
		t, ok := s.next()
		if !ok {
			return nil, s.missing(TokenCloseParen.String())
		}

		switch t.Kind {
		case TokenCloseParen:
			return args, nil
		case TokenText:
			args = append(args, ext.Text(Unescape(t.Value(s.body))))
		case TokenSymbol:
			args = append(args, ext.Symbol(t.Value(s.body)))
		default:
			return nil, s.wrong("argument", t)
		}
	}
}
