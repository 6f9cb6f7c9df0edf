package lang

import (
	"strings"
)

// TokenKind identifies the variant of a [Token].
type TokenKind uint8

const (
	TokenSymbol TokenKind = iota
	TokenText
	TokenSpace
	TokenOpenParen
	TokenCloseParen
	TokenPlus
	TokenMinus
	TokenEqual
	TokenSlash
	TokenStar
	TokenEscape
	TokenPipe
	TokenAmpersand
	TokenExclamation
)

// String returns a human-readable name of the kind.
func (k TokenKind) String() string {
	switch k {
	case TokenSymbol:
		return "symbol"
	case TokenText:
		return "text"
	case TokenSpace:
		return "space"
	case TokenOpenParen:
		return "'('"
	case TokenCloseParen:
		return "')'"
	case TokenPlus:
		return "'+'"
	case TokenMinus:
		return "'-'"
	case TokenEqual:
		return "'='"
	case TokenSlash:
		return "'/'"
	case TokenStar:
		return "'*'"
	case TokenEscape:
		return "'\\'"
	case TokenPipe:
		return "'|'"
	case TokenAmpersand:
		return "'&'"
	case TokenExclamation:
		return "'!'"
	default:
		return "unknown"
	}
}

// SpaceKind distinguishes whitespace tokens.
type SpaceKind uint8

const (
	SpaceBlank SpaceKind = iota
	SpaceTab
	SpaceLineFeed
	SpaceCarriageReturn
)

// Token is one lexical element of a region body. Its span refers to the
// string passed to [Lex]. For [TokenText] the span excludes the quotes.
type Token struct {
	Kind  TokenKind
	Span  Span
	Space SpaceKind
}

// Value returns the text covered by t in src.
func (t Token) Value(src string) string {
	return src[t.Span.Start:t.Span.End]
}

var singles = map[byte]TokenKind{
	'(': TokenOpenParen,
	')': TokenCloseParen,
	'+': TokenPlus,
	'-': TokenMinus,
	'=': TokenEqual,
	'/': TokenSlash,
	'*': TokenStar,
	'|': TokenPipe,
	'&': TokenAmpersand,
	'!': TokenExclamation,
}

var spaces = map[byte]SpaceKind{
	' ':  SpaceBlank,
	'\t': SpaceTab,
	'\n': SpaceLineFeed,
	'\r': SpaceCarriageReturn,
}

// isDelimiter reports whether c ends a pending symbol outside quoted text.
func isDelimiter(c byte) bool {
	_, single := singles[c]
	_, space := spaces[c]

	return single || space || c == '"' || c == '\\'
}

// Lex splits src into tokens.
//
// Outside quoted text, whitespace and each of ( ) + - = / * | & ! end any
// pending symbol and produce a token of their own; every other byte extends
// the pending symbol. Inside quoted text a backslash escapes the next byte.
// Escapes are kept in the token; see [Unescape].
func Lex(src string) ([]Token, error) {
	var (
		tokens []Token
		start  = 0 // first byte of the pending symbol
	)

	flush := func(i int) {
		if start < i {
			tokens = append(tokens, Token{Kind: TokenSymbol, Span: Span{start, i}})
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch {
		case c == '"':
			flush(i)

			end, err := scanText(src, i)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, Token{Kind: TokenText, Span: Span{i + 1, end}})
			i = end

		case c == '\\':
			return nil, ErrMisplacedEscape.At(i)

		default:
			if kind, ok := spaces[c]; ok {
				flush(i)
				tokens = append(tokens, Token{
					Kind: TokenSpace, Span: Span{i, i + 1}, Space: kind,
				})
			} else if kind, ok := singles[c]; ok {
				flush(i)
				tokens = append(tokens, Token{Kind: kind, Span: Span{i, i + 1}})
			} else {
				continue
			}
		}

		start = i + 1
	}

	flush(len(src))

	return tokens, nil
}

// scanText returns the offset of the quote closing the text opened at src[at].
func scanText(src string, at int) (int, error) {
	for i := at + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i, nil
		}
	}

	return 0, ErrUnterminatedText.At(at)
}

// Unescape removes escape backslashes from quoted text: each backslash is
// dropped and the byte following it is kept literally.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}

		sb.WriteByte(s[i])
	}

	return sb.String()
}

// Decode is like [Unescape] but also translates \n, \t and \r into the
// control characters they name. It applies to literal lists and separators.
func Decode(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++

			switch c = s[i]; c {
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			case 'r':
				c = '\r'
			}
		}

		sb.WriteByte(c)
	}

	return sb.String()
}

// escapeText quotes s so that [Unescape] of its content restores s.
func escapeText(s string) string {
	return `"` + textEscaper.Replace(s) + `"`
}

var textEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
