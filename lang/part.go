package lang

import (
	"log/slog"
	"strings"
)

// Kind identifies the variant of a [Part].
type Kind uint8

const (
	// KindStatic is literal text copied through on rewrite.
	KindStatic Kind = iota

	// KindExpression is a "{{ ... }}" region.
	KindExpression

	// KindStatement is a "{% ... %}" region.
	KindStatement

	// KindComment is a "{# ... #}" region, dropped on rewrite.
	KindComment

	// KindGenerated is text produced by resolution.
	KindGenerated

	// KindVerbatim is text produced by a raw statement. It is copied
	// through on rewrite and never segmented again.
	KindVerbatim
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindExpression:
		return "expression"
	case KindStatement:
		return "statement"
	case KindComment:
		return "comment"
	case KindGenerated:
		return "generated"
	case KindVerbatim:
		return "verbatim"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// delimited reports whether parts of kind k include two-byte delimiters on
// both ends of their span.
func (k Kind) delimited() bool {
	return k == KindExpression || k == KindStatement || k == KindComment
}

// Span is a half-open byte range [Start, End) into one source buffer.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Len returns the number of bytes covered by s.
func (s Span) Len() int { return s.End - s.Start }

// Part is one segment of a [Document].
//
// A part either refers to its text by span into the source of the document
// that produced it, or owns its text. Generated and detached parts own their
// text and remain valid across rewrites; span parts do not.
type Part struct {
	Kind Kind
	Span Span

	text  string
	owned bool
}

// Generated returns an owned part of kind [KindGenerated].
func Generated(text string) Part {
	return Part{Kind: KindGenerated, text: text, owned: true}
}

// Verbatim returns an owned part of kind [KindVerbatim].
func Verbatim(text string) Part {
	return Part{Kind: KindVerbatim, text: text, owned: true}
}

// Owned reports whether p carries its own text.
func (p Part) Owned() bool { return p.owned }

// Content returns the full text of p, including delimiters.
// Parts that do not own their text read it from src.
func (p Part) Content(src string) string {
	if p.owned {
		return p.text
	}

	return src[p.Span.Start:p.Span.End]
}

// Body returns the text of p between its delimiters. For parts without
// delimiters it is the same as [Part.Content].
func (p Part) Body(src string) string {
	s := p.Content(src)
	if p.Kind.delimited() && len(s) >= 4 {
		return s[2 : len(s)-2]
	}

	return s
}

// Detach returns a copy of p that owns its text, so that it outlives the
// source buffer src.
func (p Part) Detach(src string) Part {
	if p.owned {
		return p
	}

	p.text = p.Content(src)
	p.owned = true

	return p
}

func detachAll(parts []Part, src string) []Part {
	out := make([]Part, len(parts))
	for i, p := range parts {
		out[i] = p.Detach(src)
	}

	return out
}

const (
	openExpression  = "{{"
	closeExpression = "}}"
	openStatement   = "{%"
	closeStatement  = "%}"
	openComment     = "{#"
	closeComment    = "#}"
)

func openKind(pair string) (Kind, bool) {
	switch pair {
	case openExpression:
		return KindExpression, true
	case openStatement:
		return KindStatement, true
	case openComment:
		return KindComment, true
	}

	return KindStatic, false
}

func closeKind(pair string) (Kind, bool) {
	switch pair {
	case closeExpression:
		return KindExpression, true
	case closeStatement:
		return KindStatement, true
	case closeComment:
		return KindComment, true
	}

	return KindStatic, false
}

// Document owns one generation of template source and its segmentation.
type Document struct {
	source    string
	parts     []Part
	protected []Span
}

// NewDocument returns a document for the given source.
func NewDocument(src string) *Document {
	return &Document{source: src}
}

// Source returns the current source buffer.
func (d *Document) Source() string { return d.source }

// Parts returns the parts produced by the last call to [Document.Segment],
// in document order. The slice must not be modified.
func (d *Document) Parts() []Part { return d.parts }

// Segment splits the source into parts. It reports false if the source is
// empty.
//
// Opening markers are legal only in static text, and closing markers only
// inside a region of the matching kind. Ranges of the source produced by a
// raw statement in a previous generation are emitted as [KindVerbatim]
// parts without being scanned.
func (d *Document) Segment() (bool, error) {
	d.parts = nil

	src := d.source
	if src == "" {
		return false, nil
	}

	var (
		mode  = KindStatic
		start = 0
		next  = 0
	)

	push := func(kind Kind, from, to int) {
		d.parts = append(d.parts, Part{Kind: kind, Span: Span{from, to}})
	}

	for i := 0; i < len(src); {
		for next < len(d.protected) && d.protected[next].Start < i {
			next++
		}

		if mode == KindStatic && next < len(d.protected) &&
			d.protected[next].Start == i {
			if start < i {
				push(KindStatic, start, i)
			}

			span := d.protected[next]
			push(KindVerbatim, span.Start, span.End)

			i, start = span.End, span.End
			next++

			continue
		}

		if i+1 >= len(src) {
			break
		}

		// A pair ending inside a protected range is never a marker.
		if next < len(d.protected) && d.protected[next].Start == i+1 {
			i++

			continue
		}

		pair := src[i : i+2]

		if kind, ok := openKind(pair); ok {
			if mode != KindStatic {
				return false, transitionError(kind, mode, "start").At(i)
			}

			if start < i {
				push(KindStatic, start, i)
			}

			mode, start = kind, i
			i += 2

			continue
		}

		if kind, ok := closeKind(pair); ok {
			if mode != kind {
				return false, transitionError(kind, mode, "end").At(i)
			}

			push(mode, start, i+2)

			mode, start = KindStatic, i+2
			i += 2

			continue
		}

		i++
	}

	if mode != KindStatic {
		return false, ErrUnterminatedRegion.
			With(slog.String("kind", mode.String())).
			At(start)
	}

	if start < len(src) {
		push(KindStatic, start, len(src))
	}

	return true, nil
}

func transitionError(requested, active Kind, action string) *Error {
	return ErrUnauthorizedTransition.With(
		slog.String("requested", action+" "+requested.String()),
		slog.String("active", active.String()),
	)
}

// Rewrite replaces the source with the concatenation of parts and clears
// the part list. Comments are dropped. Parts that do not own their text must
// refer to the current source.
func (d *Document) Rewrite(parts []Part) {
	var (
		sb        strings.Builder
		protected []Span
	)

	for _, p := range parts {
		switch p.Kind {
		case KindComment:
			continue

		case KindVerbatim:
			s := p.Content(d.source)
			if s != "" {
				protected = append(protected, Span{sb.Len(), sb.Len() + len(s)})
			}

			sb.WriteString(s)

		default:
			sb.WriteString(p.Content(d.source))
		}
	}

	d.source = sb.String()
	d.parts = nil
	d.protected = protected
}
