package ext

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/sahilm/fuzzy"
)

// Call carries the inputs of one stage of an execute pipe.
type Call struct {
	// Result is the value returned by the previous stage, or nil in the
	// first stage.
	Result Value

	// Args are the literal ([Text]) and variable ([Symbol]) arguments.
	Args []Value

	Scope Scope
}

// Func implements an extension function.
type Func func(ctx context.Context, call *Call) (Value, error)

// Function describes one function of a [Module].
type Function struct {
	Name        string
	Description string
	Args        string
	Pipe        bool
	Fn          Func
}

// Module is a named group of functions.
type Module struct {
	Name        string
	Description string
	Functions   []Function
}

func (m Module) function(name string) (Function, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}

	return Function{}, false
}

// Registry resolves "module.function" names to extension functions.
type Registry struct {
	modules map[string]Module
}

// NewRegistry returns a registry containing mods.
func NewRegistry(mods ...Module) *Registry {
	r := &Registry{modules: make(map[string]Module, len(mods))}
	for _, m := range mods {
		r.Register(m)
	}

	return r
}

// Builtin returns a registry of all built-in modules.
func Builtin() *Registry {
	return NewRegistry(
		TextModule(),
		MacroModule(),
		ExprModule(),
		PathModule(),
		YAMLModule(),
	)
}

// Register adds m, replacing any module of the same name.
func (r *Registry) Register(m Module) {
	r.modules[m.Name] = m
}

// Modules returns the registered modules sorted by name.
func (r *Registry) Modules() []Module {
	mods := make([]Module, 0, len(r.modules))
	for _, name := range slices.Sorted(maps.Keys(r.modules)) {
		mods = append(mods, r.modules[name])
	}

	return mods
}

// Names returns the qualified "module.function" names of all functions.
func (r *Registry) Names() []string {
	var names []string

	for _, m := range r.Modules() {
		for _, f := range m.Functions {
			names = append(names, m.Name+"."+f.Name)
		}
	}

	return names
}

// Execute calls function fn of module mod.
func (r *Registry) Execute(
	ctx context.Context,
	mod, fn string,
	call *Call,
) (Value, error) {
	m, ok := r.modules[mod]
	if !ok {
		return nil, ErrModuleNotFound.With(
			append(
				[]slog.Attr{slog.String("module", mod)},
				suggest(mod, slices.Collect(maps.Keys(r.modules)))...,
			)...,
		)
	}

	f, ok := m.function(fn)
	if !ok {
		names := make([]string, len(m.Functions))
		for i, f := range m.Functions {
			names[i] = f.Name
		}

		return nil, ErrFunctionNotFound.With(
			append(
				[]slog.Attr{
					slog.String("module", mod),
					slog.String("function", fn),
				},
				suggest(fn, names)...,
			)...,
		)
	}

	return f.Fn(ctx, call)
}

func suggest(word string, candidates []string) []slog.Attr {
	if m := fuzzy.Find(word, candidates); m.Len() > 0 {
		return []slog.Attr{slog.String("hint", "did you mean '"+m[0].Str+"'?")}
	}

	return nil
}
