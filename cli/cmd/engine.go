package cmd

import (
	"fmt"
	"log/slog"
	"maps"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/moustache/lang"
	"github.com/ardnew/moustache/log"
)

// EngineFlags configures the engine and initial environment of the
// commands that render templates.
type EngineFlags struct {
	Var          map[string]string `help:"Set a variable (repeatable)"                        placeholder:"KEY=VALUE" short:"D"`
	VarsFile     []string          `help:"Load variables from a flat YAML mapping"            placeholder:"FILE"      type:"existingfile"`
	Reentrant    bool              `help:"Resolve until the output stops changing"            negatable:""            short:"r"`
	MaxPasses    int               `default:"${maxPasses}"                                    help:"Limit the number of resolve passes (0 for no limit)"`
	NoExtensions bool              `help:"Make execute statements an error"`
	BaseDir      string            `help:"Resolve include and find paths relative to DIR"     placeholder:"DIR"       type:"path"`
}

// Environment returns a new environment holding the variables of every
// variables file, in order, then of every --var flag.
func (f *EngineFlags) Environment() (*lang.Environment, error) {
	vars := make(map[string]string)

	for _, name := range f.VarsFile {
		m, err := readVarsFile(name)
		if err != nil {
			return nil, err
		}

		maps.Copy(vars, m)
	}

	maps.Copy(vars, f.Var)

	return lang.NewEnvironment(vars), nil
}

// Engine returns an engine configured by the flags using env. Options in
// extra are applied last.
func (f *EngineFlags) Engine(env *lang.Environment, extra ...lang.Option) *lang.Engine {
	opts := []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithEnvironment(env),
		lang.WithReentrant(f.Reentrant),
		lang.WithMaxPasses(f.MaxPasses),
		lang.WithBaseDir(f.BaseDir),
	}

	if f.NoExtensions {
		opts = append(opts, lang.WithoutExtensions())
	}

	return lang.New(append(opts, extra...)...)
}

// readVarsFile reads a YAML mapping of variable names to scalar values.
func readVarsFile(name string) (map[string]string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, ErrVarsFile.With(slog.String("path", name)).Wrap(err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrVarsFile.With(slog.String("path", name)).Wrap(err)
	}

	vars := make(map[string]string, len(doc))

	for k, v := range doc {
		switch v := v.(type) {
		case nil:
			vars[k] = ""
		case map[string]any, []any:
			return nil, ErrVarsFile.With(
				slog.String("path", name),
				slog.String("key", k),
				slog.String("reason", "value is not a scalar"),
			)
		default:
			vars[k] = fmt.Sprint(v)
		}
	}

	return vars, nil
}
