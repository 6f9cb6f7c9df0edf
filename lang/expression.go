package lang

import (
	"log/slog"
	"strings"
)

// Evaluate evaluates the body of an expression region against env.
//
//	expr := term ('+' term)*
//	term := Text | Symbol
//
// Text terms contribute their unescaped content and symbols their value in
// env. The terms are concatenated in order.
func Evaluate(body string, env *Environment) (string, error) {
	tokens, err := Lex(body)
	if err != nil {
		return "", err
	}

	return concat(body, tokens, env)
}

func concat(src string, tokens []Token, env *Environment) (string, error) {
	var (
		sb     strings.Builder
		terms  int
		expect = true // a term is expected next
	)

	for _, t := range tokens {
		switch t.Kind {
		case TokenSpace:
			continue

		case TokenPlus:
			if expect {
				return "", ErrOperatorPlacement.
					With(slog.String("operator", "+")).
					At(t.Span.Start)
			}

			expect = true

		case TokenText, TokenSymbol:
			if !expect {
				return "", ErrMissingOperator.
					With(slog.String("term", t.Value(src))).
					At(t.Span.Start)
			}

			val, err := operand(src, t, env)
			if err != nil {
				return "", err
			}

			sb.WriteString(val)

			expect = false
			terms++

		default:
			return "", unexpected(src, t)
		}
	}

	if terms == 0 {
		return "", ErrEmptyExpression
	}

	if expect {
		return "", ErrOperatorPlacement.
			With(slog.String("operator", "+")).
			At(len(src))
	}

	return sb.String(), nil
}

// operand returns the value of a Text or Symbol token.
func operand(src string, t Token, env *Environment) (string, error) {
	if t.Kind == TokenText {
		return Unescape(t.Value(src)), nil
	}

	return env.Get(t.Value(src))
}

func unexpected(src string, t Token) *Error {
	return ErrUnexpectedToken.With(
		slog.String("token", t.Kind.String()),
		slog.String("value", t.Value(src)),
	).At(t.Span.Start)
}
