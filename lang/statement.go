package lang

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// stmt is the state of one statement being resolved: the lexed body and a
// cursor over its tokens, plus the document it belongs to.
type stmt struct {
	ctx    context.Context
	engine *Engine
	env    *Environment
	doc    *Document
	index  int // position of the statement in doc.Parts()
	body   string
	tokens []Token
	pos    int
}

// unit resolves one kind of statement. It returns the parts that replace
// the statement and the number of parts following it that it consumed.
type unit func(s *stmt) ([]Part, int, error)

func (e *Engine) unit(name string) (unit, bool) {
	switch name {
	case "set":
		return (*stmt).set, true
	case "if":
		return (*stmt).ifUnit, true
	case "for":
		return (*stmt).forUnit, true
	case "block":
		return (*stmt).block, true
	case "call":
		return (*stmt).call, true
	case "include":
		return (*stmt).include, true
	case "find":
		return (*stmt).find, true
	case "raw":
		return (*stmt).raw, true
	case "execute":
		return (*stmt).execute, true
	}

	return nil, false
}

// statement resolves the statement at index of doc.
func (e *Engine) statement(
	ctx context.Context,
	doc *Document,
	index int,
) ([]Part, int, error) {
	p := doc.Parts()[index]
	body := p.Body(doc.Source())

	fail := func(kind string, err error) error {
		return ErrStatement.With(
			slog.String("kind", kind),
			slog.String("source", strings.TrimSpace(body)),
		).At(p.Span.Start).Wrap(err)
	}

	tokens, err := Lex(body)
	if err != nil {
		return nil, 0, fail("?", err)
	}

	s := &stmt{
		ctx:    ctx,
		engine: e,
		env:    e.env,
		doc:    doc,
		index:  index,
		body:   body,
		tokens: tokens,
	}

	t, ok := s.next()
	if !ok {
		return nil, 0, fail("?", ErrEmptyStatement)
	}

	if t.Kind != TokenSymbol {
		return nil, 0, fail("?", unexpected(body, t))
	}

	name := t.Value(body)

	u, ok := e.unit(name)
	if !ok {
		return nil, 0, fail(name, ErrUnknownStatement.With(
			append(
				[]slog.Attr{slog.String("name", name)},
				hint(name, Keywords)...,
			)...,
		))
	}

	out, skip, err := u(s)
	if err != nil {
		return nil, 0, fail(name, err)
	}

	e.logger.TraceContext(ctx, "statement",
		slog.String("kind", name),
		slog.Int("offset", p.Span.Start),
		slog.Int("parts", len(out)),
		slog.Int("consumed", skip),
	)

	return out, skip, nil
}

// next returns the next token that is not a space.
func (s *stmt) next() (Token, bool) {
	t, ok := s.peek()
	if ok {
		s.pos++
	}

	return t, ok
}

// peek is like next but does not advance.
func (s *stmt) peek() (Token, bool) {
	for s.pos < len(s.tokens) && s.tokens[s.pos].Kind == TokenSpace {
		s.pos++
	}

	if s.pos >= len(s.tokens) {
		return Token{}, false
	}

	return s.tokens[s.pos], true
}

// rest returns the remaining tokens and moves the cursor to the end.
func (s *stmt) rest() []Token {
	r := s.tokens[s.pos:]
	s.pos = len(s.tokens)

	return r
}

func (s *stmt) missing(slot string) *Error {
	return ErrIncompleteStatement.
		With(slog.String("missing", slot)).
		At(len(s.body))
}

func (s *stmt) wrong(slot string, t Token) *Error {
	return unexpected(s.body, t).With(slog.String("expected", slot))
}

// symbol consumes a symbol and returns its name.
func (s *stmt) symbol(slot string) (string, error) {
	t, ok := s.next()
	if !ok {
		return "", s.missing(slot)
	}

	if t.Kind != TokenSymbol {
		return "", s.wrong(slot, t)
	}

	return t.Value(s.body), nil
}

// keyword consumes the symbol word.
func (s *stmt) keyword(word string) error {
	t, ok := s.next()
	if !ok {
		return s.missing("'" + word + "'")
	}

	if t.Kind != TokenSymbol || t.Value(s.body) != word {
		return s.wrong("'"+word+"'", t)
	}

	return nil
}

// expect consumes a token of the given kind.
func (s *stmt) expect(kind TokenKind) error {
	t, ok := s.next()
	if !ok {
		return s.missing(kind.String())
	}

	if t.Kind != kind {
		return s.wrong(kind.String(), t)
	}

	return nil
}

// optional consumes the next token if it is of the given kind.
func (s *stmt) optional(kind TokenKind) bool {
	t, ok := s.peek()
	if ok && t.Kind == kind {
		s.pos++

		return true
	}

	return false
}

// value consumes a Text or Symbol and returns the unescaped text or the
// value of the variable.
func (s *stmt) value(slot string) (string, error) {
	return s.operand(slot, Unescape)
}

// decoded is like value but also decodes control character escapes in
// literal text.
func (s *stmt) decoded(slot string) (string, error) {
	return s.operand(slot, Decode)
}

func (s *stmt) operand(slot string, unescape func(string) string) (string, error) {
	t, ok := s.next()
	if !ok {
		return "", s.missing(slot)
	}

	switch t.Kind {
	case TokenText:
		return unescape(t.Value(s.body)), nil
	case TokenSymbol:
		return s.env.Get(t.Value(s.body))
	default:
		return "", s.wrong(slot, t)
	}
}

// done fails if any token other than space remains.
func (s *stmt) done() error {
	if t, ok := s.peek(); ok {
		return s.wrong("end of statement", t)
	}

	return nil
}

// end returns the index of the statement closing this one. Statements
// opening the same kind nest.
func (s *stmt) end(opening, closing string) (int, error) {
	parts := s.doc.Parts()
	src := s.doc.Source()
	depth := 1

	for j := s.index + 1; j < len(parts); j++ {
		if parts[j].Kind != KindStatement {
			continue
		}

		body := parts[j].Body(src)

		switch {
		case leadingSymbol(body) == opening:
			depth++
		case strings.TrimSpace(body) == closing:
			if depth--; depth == 0 {
				return j, nil
			}
		}
	}

	return 0, ErrUnfinishedBlock.With(
		slog.String("block", opening),
		slog.String("missing", closing),
	)
}

// enclosed returns a copy of the parts strictly between this statement and
// the part at end.
func (s *stmt) enclosed(end int) []Part {
	return slices.Clone(s.doc.Parts()[s.index+1 : end])
}

// leadingSymbol returns the first symbol of a statement body.
func leadingSymbol(body string) string {
	body = strings.TrimLeft(body, " \t\r\n")

	for i := 0; i < len(body); i++ {
		if isDelimiter(body[i]) {
			return body[:i]
		}
	}

	return body
}
