package lang

import (
	"strings"
)

// ifUnit handles
//
//	if condition ... endif
//
// The enclosed parts are kept if the condition holds and dropped otherwise.
func (s *stmt) ifUnit() ([]Part, int, error) {
	end, err := s.end("if", "endif")
	if err != nil {
		return nil, 0, err
	}

	c, err := parseCondition(s.body, s.rest())
	if err != nil {
		return nil, 0, err
	}

	ok, err := c.eval(s.body, s.env)
	if err != nil {
		return nil, 0, err
	}

	if !ok {
		return nil, end - s.index, nil
	}

	return s.enclosed(end), end - s.index, nil
}

// forUnit handles
//
//	for variable in list [! separator] ... endfor
//
// The list is split on the separator (a newline by default). Each item
// emits a set statement binding the variable, followed by a copy of the
// enclosed parts; both are resolved in the next pass.
func (s *stmt) forUnit() ([]Part, int, error) {
	end, err := s.end("for", "endfor")
	if err != nil {
		return nil, 0, err
	}

	variable, err := s.symbol("variable")
	if err != nil {
		return nil, 0, err
	}

	if err := s.keyword("in"); err != nil {
		return nil, 0, err
	}

	list, err := s.decoded("list")
	if err != nil {
		return nil, 0, err
	}

	sep := "\n"

	if s.optional(TokenExclamation) {
		if sep, err = s.decoded("separator"); err != nil {
			return nil, 0, err
		}

		if sep == "" {
			return nil, 0, s.missing("non-empty separator")
		}
	}

	if err := s.done(); err != nil {
		return nil, 0, err
	}

	body := s.enclosed(end)
	items := strings.Split(list, sep)
	out := make([]Part, 0, len(items)*(len(body)+1))

	// Items are quoted but not protected, so an item holding a delimiter
	// marker fails to segment in the next pass.
	for _, item := range items {
		out = append(out, Generated(
			openStatement+" set "+variable+" = "+escapeText(item)+" "+closeStatement,
		))
		out = append(out, body...)
	}

	return out, end - s.index, nil
}
