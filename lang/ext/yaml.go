package ext

import (
	"context"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

// YAMLModule returns the "yaml" module querying YAML documents.
func YAMLModule() Module {
	return Module{
		Name:        "yaml",
		Description: "YAML document queries",
		Functions: []Function{
			{
				Name:        "get",
				Description: "read the node at a YAMLPath (e.g. $.a.b[0])",
				Args:        "the path, then the document (unless piped)",
				Pipe:        true,
				Fn:          yamlGet,
			},
		},
	}
}

func yamlGet(_ context.Context, call *Call) (Value, error) {
	args := call.Args
	if len(args) == 0 {
		return nil, ErrArgument.With(slog.String("reason", "missing path"))
	}

	query, err := resolve(call, args[0])
	if err != nil {
		return nil, err
	}

	var doc string

	switch {
	case call.Result != nil && len(args) == 1:
		doc = Concat(call.Result)
	case call.Result == nil && len(args) == 2:
		if doc, err = resolve(call, args[1]); err != nil {
			return nil, err
		}
	default:
		return nil, ErrArgument.With(
			slog.String("reason", "expected a path and one document"),
		)
	}

	path, err := yaml.PathString(query)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("path", query))
	}

	var out any
	if err := path.Read(strings.NewReader(doc), &out); err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("path", query))
	}

	return FromAny(out), nil
}
