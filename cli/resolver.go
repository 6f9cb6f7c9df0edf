package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/moustache/log"
)

// loadYAML is a [kong.ConfigurationLoader] reading a YAML mapping of flag
// names to values:
//
//	log-level: debug
//	reentrant: true
//	max-passes: 64
//	var:
//	  name: World
//
// Keys may use '_' in place of '-'. Sequences become comma-separated lists
// and mappings become "key=value" pairs joined by ';', the forms kong uses
// for slice and map flags. A file that cannot be parsed is ignored with a
// warning so that a broken configuration never prevents the command line
// from being used to repair it. Command-line flags override file values.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	err := yaml.NewDecoder(r).Decode(&doc)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring configuration file", slog.String("error", err.Error()))
		}

		return config{}, nil
	}

	cfg := make(config, len(doc))
	for k, v := range doc {
		cfg[strings.ReplaceAll(k, "_", "-")] = flagText(v)
	}

	return cfg, nil
}

// config implements [kong.Resolver] over a flat map of flag values.
type config map[string]string

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}

// flagText converts a decoded YAML value to the text kong would accept on
// the command line.
func flagText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]string, len(v))
		for i, e := range v {
			items[i] = flagText(e)
		}

		return strings.Join(items, ",")
	case map[string]any:
		pairs := make([]string, 0, len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			pairs = append(pairs, k+"="+flagText(v[k]))
		}

		return strings.Join(pairs, ";")
	default:
		return fmt.Sprint(v)
	}
}
