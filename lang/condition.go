package lang

import (
	"log/slog"
)

// condition is a sequence of operands joined by boolean operators. It is
// evaluated as a strict left fold: there is no precedence between && and
// ||, and a group is folded in by the operator preceding it exactly like a
// single assertion.
type condition struct {
	first operandNode
	rest  []link
}

type link struct {
	and  bool
	node operandNode
}

// operandNode is either an assertion or a parenthesized group.
type operandNode struct {
	assert *assertion
	group  *condition
}

type assertion struct {
	equal       bool
	left, right Token
}

// EvaluateCondition parses and evaluates the condition src against env.
//
//	general    := operand (operator operand)*
//	operand    := '(' general ')' | assertion
//	assertion  := (Symbol|Text) comparator (Symbol|Text)
//	comparator := '==' | '!='
//	operator   := '&&' | '||'
//
// Comparators and operators are two adjacent characters.
func EvaluateCondition(src string, env *Environment) (bool, error) {
	tokens, err := Lex(src)
	if err != nil {
		return false, err
	}

	c, err := parseCondition(src, tokens)
	if err != nil {
		return false, err
	}

	return c.eval(src, env)
}

func parseCondition(src string, tokens []Token) (*condition, error) {
	p := &condParser{src: src, tokens: tokens}

	if _, ok := p.peek(); !ok {
		return nil, ErrEmptyCondition
	}

	return p.general(0)
}

type condParser struct {
	src    string
	tokens []Token
	pos    int
}

func (p *condParser) peek() (Token, bool) {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind == TokenSpace {
		p.pos++
	}

	if p.pos >= len(p.tokens) {
		return Token{}, false
	}

	return p.tokens[p.pos], true
}

// adjacent reports whether the token at pos is of the given kind, without
// skipping space.
func (p *condParser) adjacent(kind TokenKind) bool {
	return p.pos < len(p.tokens) && p.tokens[p.pos].Kind == kind
}

func (p *condParser) end() int {
	return len(p.src)
}

func (p *condParser) general(depth int) (*condition, error) {
	first, err := p.operand()
	if err != nil {
		return nil, err
	}

	c := &condition{first: first}

	for {
		t, ok := p.peek()
		if !ok {
			if depth > 0 {
				return nil, ErrUnmatchedGroup.
					With(slog.String("missing", ")")).
					At(p.end())
			}

			return c, nil
		}

		if t.Kind == TokenCloseParen {
			if depth == 0 {
				return nil, ErrUnmatchedGroup.
					With(slog.String("unexpected", ")")).
					At(t.Span.Start)
			}

			return c, nil
		}

		and, err := p.operator()
		if err != nil {
			return nil, err
		}

		node, err := p.operand()
		if err != nil {
			return nil, err
		}

		c.rest = append(c.rest, link{and: and, node: node})
	}
}

func (p *condParser) operand() (operandNode, error) {
	t, ok := p.peek()
	if !ok {
		return operandNode{}, ErrMissingOperand.At(p.end())
	}

	if t.Kind != TokenOpenParen {
		a, err := p.assertion()

		return operandNode{assert: a}, err
	}

	p.pos++

	g, err := p.general(1)
	if err != nil {
		return operandNode{}, err
	}

	p.pos++ // ')'

	return operandNode{group: g}, nil
}

func (p *condParser) assertion() (*assertion, error) {
	left, _ := p.peek()
	if left.Kind != TokenSymbol && left.Kind != TokenText {
		return nil, ErrInvalidOperand.
			With(slog.String("token", left.Kind.String())).
			At(left.Span.Start)
	}

	p.pos++

	t, ok := p.peek()
	if !ok {
		return nil, ErrMissingComparator.At(p.end())
	}

	var equal bool

	switch t.Kind {
	case TokenEqual:
		equal = true
	case TokenExclamation:
	default:
		return nil, ErrMissingComparator.
			With(slog.String("token", t.Kind.String())).
			At(t.Span.Start)
	}

	p.pos++

	if !p.adjacent(TokenEqual) {
		return nil, ErrMissingComparator.
			With(slog.String("token", t.Kind.String())).
			At(t.Span.Start)
	}

	p.pos++

	right, ok := p.peek()
	if !ok {
		return nil, ErrMissingOperand.At(p.end())
	}

	if right.Kind != TokenSymbol && right.Kind != TokenText {
		return nil, ErrInvalidOperand.
			With(slog.String("token", right.Kind.String())).
			At(right.Span.Start)
	}

	p.pos++

	return &assertion{equal: equal, left: left, right: right}, nil
}

func (p *condParser) operator() (and bool, err error) {
	t, _ := p.peek()

	switch t.Kind {
	case TokenAmpersand:
		and = true
	case TokenPipe:
	default:
		return false, ErrInvalidOperator.
			With(slog.String("token", t.Kind.String())).
			At(t.Span.Start)
	}

	p.pos++

	if !p.adjacent(t.Kind) {
		return false, ErrInvalidOperator.
			With(slog.String("token", t.Kind.String())).
			At(t.Span.Start)
	}

	p.pos++

	return and, nil
}

func (c *condition) eval(src string, env *Environment) (bool, error) {
	result, err := c.first.eval(src, env)
	if err != nil {
		return false, err
	}

	for _, l := range c.rest {
		v, err := l.node.eval(src, env)
		if err != nil {
			return false, err
		}

		if l.and {
			result = result && v
		} else {
			result = result || v
		}
	}

	return result, nil
}

func (n operandNode) eval(src string, env *Environment) (bool, error) {
	if n.group != nil {
		return n.group.eval(src, env)
	}

	return n.assert.eval(src, env)
}

func (a *assertion) eval(src string, env *Environment) (bool, error) {
	left, err := operand(src, a.left, env)
	if err != nil {
		return false, err
	}

	right, err := operand(src, a.right, env)
	if err != nil {
		return false, err
	}

	return (left == right) == a.equal, nil
}
