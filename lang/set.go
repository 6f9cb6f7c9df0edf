package lang

import (
	"log/slog"
	"slices"
)

// Assignment guards of the set statement.
const (
	guardUnset  = "unset"  // assign only if the key is absent
	guardSetted = "setted" // assign only if the key is present
)

// set handles
//
//	set key = term ('+' term)* [! (unset|setted)]
func (s *stmt) set() ([]Part, int, error) {
	key, err := s.symbol("key")
	if err != nil {
		return nil, 0, err
	}

	if err := s.expect(TokenEqual); err != nil {
		return nil, 0, err
	}

	rest := s.rest()

	guarded := slices.IndexFunc(rest, func(t Token) bool {
		return t.Kind == TokenExclamation
	})

	terms := rest
	if guarded >= 0 {
		terms = rest[:guarded]
		s.tokens, s.pos = rest[guarded+1:], 0
	}

	val, err := concat(s.body, terms, s.env)
	if err != nil {
		return nil, 0, err
	}

	if guarded < 0 {
		return nil, 0, s.env.Set(key, val)
	}

	guard, err := s.symbol("guard")
	if err != nil {
		return nil, 0, err
	}

	if guard != guardUnset && guard != guardSetted {
		return nil, 0, ErrUnexpectedToken.With(
			append(
				[]slog.Attr{
					slog.String("guard", guard),
					slog.String("expected", guardUnset+" or "+guardSetted),
				},
				hint(guard, []string{guardUnset, guardSetted})...,
			)...,
		)
	}

	if err := s.done(); err != nil {
		return nil, 0, err
	}

	has, err := s.env.Has(key)
	if err != nil {
		return nil, 0, err
	}

	if (guard == guardUnset) == has {
		return nil, 0, nil
	}

	return nil, 0, s.env.Set(key, val)
}
