package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/ardnew/moustache/lang"
	"github.com/ardnew/moustache/log"
)

// Render renders a template to the output.
type Render struct {
	EngineFlags `embed:""`

	Input         []string `default:"-"                                       help:"Template file(s), or '-' for stdin" short:"i" placeholder:"FILE"`
	Output        string   `default:"-"                                       help:"Output file, or '-' for stdout"     short:"o" placeholder:"FILE"`
	SkipFirstLine bool     `help:"Drop the first line of the rendered output (e.g. a #! line)"`
	Debug         bool     `help:"Dump variables and blocks as YAML to stderr after rendering"`
	Diff          bool     `help:"Print a unified diff of the template and its rendering instead of the rendering"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) error {
	in, done, err := openInputs(r.Input)
	if err != nil {
		return err
	}
	defer done()

	src, err := lang.ReadAll(in)
	if err != nil {
		return err
	}

	env, err := r.Environment()
	if err != nil {
		return err
	}

	out, err := r.Engine(env).Render(ctx, src)
	if err != nil {
		return err
	}

	if r.SkipFirstLine {
		out = skipLine(out)
	}

	w, err := createOutput(r.Output)
	if err != nil {
		return err
	}

	err = writeOutput(w, r.Output, func(w io.Writer) error {
		if r.Diff {
			return writeDiff(w, src, out)
		}

		_, err := io.WriteString(w, out)

		return err
	})
	if err != nil {
		return err
	}

	if r.Debug {
		return dumpEnvironment(os.Stderr, env)
	}

	log.DebugContext(ctx, "rendered",
		slog.Int("input", len(src)),
		slog.Int("output", len(out)),
	)

	return nil
}

// writeOutput calls write with w and closes w. A failure of either is
// reported as [ErrWriteOutput] for the named output.
func writeOutput(w io.WriteCloser, name string, write func(io.Writer) error) error {
	err := write(w)
	if cerr := w.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return ErrWriteOutput.With(slog.String("path", name)).Wrap(err)
	}

	return nil
}

// writeDiff writes a unified diff turning the template into its rendering.
func writeDiff(w io.Writer, template, rendered string) error {
	return difflib.WriteUnifiedDiff(w, difflib.UnifiedDiff{
		A:        difflib.SplitLines(template),
		B:        difflib.SplitLines(rendered),
		FromFile: "template",
		ToFile:   "rendered",
		Context:  3,
	})
}

// snapshot is the YAML form of an environment.
type snapshot struct {
	Vars   yaml.MapSlice `yaml:"vars"`
	Blocks yaml.MapSlice `yaml:"blocks"`
}

// dumpEnvironment writes the variables and blocks of env to w as YAML.
func dumpEnvironment(w io.Writer, env *lang.Environment) error {
	var snap snapshot

	for k, v := range env.Vars() {
		snap.Vars = append(snap.Vars, yaml.MapItem{Key: k, Value: v})
	}

	for k, v := range env.Blocks() {
		snap.Blocks = append(snap.Blocks, yaml.MapItem{Key: k, Value: v})
	}

	b, err := yaml.MarshalWithOptions(snap, yaml.UseLiteralStyleIfMultiline(true))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	_, err = fmt.Fprintf(w, "---\n%s", b)

	return err
}
