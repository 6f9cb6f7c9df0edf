package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/moustache/lang"
)

// Parts prints the parts of a template without resolving it.
type Parts struct {
	Format string `default:"yaml" enum:"yaml,json" help:"Output format"`
	Indent int    `default:"2"                     help:"Indent width (0 for compact output)" short:"n"`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin" name:"source"`
}

// part is the printed form of a [lang.Part].
type part struct {
	Kind string    `json:"kind" yaml:"kind"`
	Span lang.Span `json:"span" yaml:"span"`
	Text string    `json:"text" yaml:"text"`
}

// Run executes the parts command.
func (p *Parts) Run(ctx context.Context) error {
	in, done, err := openInputs([]string{p.Source})
	if err != nil {
		return err
	}
	defer done()

	src, err := lang.ReadAll(in)
	if err != nil {
		return err
	}

	parts, err := segment(src)
	if err != nil {
		return err
	}

	if p.Format == "json" {
		return writeJSON(os.Stdout, parts, p.Indent)
	}

	return writeYAML(ctx, os.Stdout, parts, p.Indent)
}

// segment splits src once and returns its parts in printed form.
func segment(src string) ([]part, error) {
	doc := lang.NewDocument(src)
	if _, err := doc.Segment(); err != nil {
		return nil, err
	}

	parts := make([]part, 0, len(doc.Parts()))
	for _, p := range doc.Parts() {
		parts = append(parts, part{
			Kind: p.Kind.String(),
			Span: p.Span,
			Text: p.Content(src),
		})
	}

	return parts, nil
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent), yaml.UseLiteralStyleIfMultiline(true))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}
