package lang

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/moustache/lang/ext"
	"github.com/ardnew/moustache/log"
)

// DefaultMaxPasses is the default limit on resolve passes of one render.
const DefaultMaxPasses = 1024

// Engine renders templates against one [Environment].
type Engine struct {
	logger    log.Logger
	env       *Environment
	registry  *ext.Registry
	reentrant bool
	maxPasses int
	baseDir   string
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEnvironment sets the environment shared by all renders of the engine.
func WithEnvironment(env *Environment) Option {
	return func(e *Engine) {
		e.env = env
	}
}

// WithReentrant sets whether [Engine.Render] repeats passes until the
// output stops changing. If false, a single pass is made.
func WithReentrant(reentrant bool) Option {
	return func(e *Engine) {
		e.reentrant = reentrant
	}
}

// WithMaxPasses limits the number of passes of one render. Zero or less
// means no limit.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		e.maxPasses = n
	}
}

// WithExtensions sets the registry of functions available to execute
// statements.
func WithExtensions(registry *ext.Registry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithoutExtensions makes every execute statement an error.
func WithoutExtensions() Option {
	return WithExtensions(nil)
}

// WithBaseDir sets the directory against which relative include and find
// paths are resolved. The default is the working directory.
func WithBaseDir(dir string) Option {
	return func(e *Engine) {
		e.baseDir = dir
	}
}

// New returns an engine configured by opts. By default it is re-entrant,
// uses the built-in extensions and has an empty environment.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry:  ext.Builtin(),
		reentrant: true,
		maxPasses: DefaultMaxPasses,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.env == nil {
		e.env = NewEnvironment(nil)
	}

	return e
}

// Environment returns the environment of the engine.
func (e *Engine) Environment() *Environment { return e.env }

// Extensions returns the extension registry, or nil if extensions are
// disabled.
func (e *Engine) Extensions() *ext.Registry { return e.registry }

// Resolve performs one pass over doc: it segments the source, replaces
// every expression and statement with its result, and rewrites the source.
// It reports whether anything was replaced.
func (e *Engine) Resolve(ctx context.Context, doc *Document) (bool, error) {
	ok, err := doc.Segment()
	if err != nil || !ok {
		return false, err
	}

	var (
		src     = doc.Source()
		parts   = doc.Parts()
		out     = make([]Part, 0, len(parts))
		changed bool
	)

	for i := 0; i < len(parts); i++ {
		p := parts[i]

		switch p.Kind {
		case KindExpression:
			val, err := Evaluate(p.Body(src), e.env)
			if err != nil {
				return false, ErrExpression.With(
					slog.String("source", p.Content(src)),
				).At(p.Span.Start).Wrap(err)
			}

			out = append(out, Generated(val))
			changed = true

		case KindStatement:
			res, skip, err := e.statement(ctx, doc, i)
			if err != nil {
				return false, err
			}

			out = append(out, res...)
			i += skip
			changed = true

		default:
			out = append(out, p)
		}
	}

	doc.Rewrite(out)

	return changed, nil
}

// Render resolves src until a pass makes no replacement, or once if the
// engine is not re-entrant, and returns the final source.
//
// Rendering fails with [ErrExpansionCycle] if a pass starts from the same
// source and environment as an earlier pass, and with [ErrTooManyPasses]
// if the pass limit is reached.
func (e *Engine) Render(ctx context.Context, src string) (string, error) {
	doc := NewDocument(src)
	seen := make(map[uint64]int)

	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if e.maxPasses > 0 && pass > e.maxPasses {
			return "", ErrTooManyPasses.With(slog.Int("max", e.maxPasses))
		}

		state := e.state(doc)
		if first, ok := seen[state]; ok {
			return "", ErrExpansionCycle.With(
				slog.Int("pass", pass),
				slog.Int("repeats", first),
			)
		}

		seen[state] = pass

		changed, err := e.Resolve(ctx, doc)
		if err != nil {
			return "", err
		}

		e.logger.TraceContext(ctx, "resolve pass",
			slog.Int("pass", pass),
			slog.Bool("changed", changed),
			slog.Int("bytes", len(doc.Source())),
		)

		if !changed || !e.reentrant {
			e.logger.DebugContext(ctx, "render complete",
				slog.Int("passes", pass),
				slog.Int("vars", e.env.Len()),
			)

			return doc.Source(), nil
		}
	}
}

// RenderReader reads a template from r and renders it.
func (e *Engine) RenderReader(ctx context.Context, r io.Reader) (string, error) {
	src, err := ReadAll(r)
	if err != nil {
		return "", err
	}

	return e.Render(ctx, src)
}

// state fingerprints the source, protected ranges and environment of doc.
func (e *Engine) state(doc *Document) uint64 {
	buf := make([]byte, 0, len(doc.source)+8*(2*len(doc.protected)+1))
	buf = append(buf, doc.source...)

	for _, span := range doc.protected {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(span.Start))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(span.End))
	}

	buf = binary.LittleEndian.AppendUint64(buf, e.env.Fingerprint())

	return xxh3.Hash(buf)
}
