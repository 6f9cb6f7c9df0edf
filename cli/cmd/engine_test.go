package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardnew/moustache/lang"
)

func TestEngineFlags_Environment(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "name: World\ncount: 3\nflag: true\nempty:\n")
	over := writeFile(t, dir, "over.yaml", "name: Moon\n")

	f := EngineFlags{
		VarsFile: []string{base, over},
		Var:      map[string]string{"count": "4"},
	}

	env, err := f.Environment()
	if err != nil {
		t.Fatalf("Environment() error: %v", err)
	}

	want := map[string]string{
		"name":  "Moon",
		"count": "4",
		"flag":  "true",
		"empty": "",
	}

	for k, v := range want {
		got, err := env.Get(k)
		if err != nil {
			t.Errorf("Get(%s) error: %v", k, err)

			continue
		}

		if got != v {
			t.Errorf("Get(%s) = %q, want %q", k, got, v)
		}
	}
}

func TestEngineFlags_VarsFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.yaml")},
		{"nested", writeFile(t, dir, "nested.yaml", "a:\n  b: c\n")},
		{"sequence value", writeFile(t, dir, "seq.yaml", "a: [1, 2]\n")},
		{"malformed", writeFile(t, dir, "bad.yaml", "a: [\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := EngineFlags{VarsFile: []string{tt.path}}
			if _, err := f.Environment(); !errors.Is(err, ErrVarsFile) {
				t.Errorf("Environment() error = %v, want ErrVarsFile", err)
			}
		})
	}
}

func TestEngineFlags_Engine(t *testing.T) {
	f := EngineFlags{NoExtensions: true}

	env, err := f.Environment()
	if err != nil {
		t.Fatal(err)
	}

	e := f.Engine(env)
	if e.Extensions() != nil {
		t.Error("extensions enabled")
	}

	if e.Environment() != env {
		t.Error("engine does not use the given environment")
	}

	_, err = e.Render(t.Context(), `{% execute x = text.trim("a") %}`)
	if !errors.Is(err, lang.ErrExtensionsDisabled) {
		t.Errorf("Render() error = %v, want ErrExtensionsDisabled", err)
	}
}
