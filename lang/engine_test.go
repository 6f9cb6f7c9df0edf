package lang

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEngineRender(t *testing.T) {
	tests := []struct {
		name string
		src  string
		vars map[string]string
		want string
	}{
		{name: "empty", src: "", want: ""},
		{name: "static", src: "plain text\n", want: "plain text\n"},
		{name: "text concatenation", src: `{{ "a" + "b" }}`, want: "ab"},
		{name: "variable", src: "{{ x }}", vars: map[string]string{"x": "5"}, want: "5"},
		{
			name: "set then read",
			src:  `{% set a = "1" %}{% set b = "2" %}{{ a + b }}`,
			want: "12",
		},
		{
			name: "set from variables",
			src:  `{% set c = a + "-" + b %}{{ c }}`,
			vars: map[string]string{"a": "x", "b": "y"},
			want: "x-y",
		},
		{
			name: "guard unset keeps existing value",
			src:  `{% set a = "1" %}{% set a = "2" ! unset %}{{ a }}`,
			want: "1",
		},
		{
			name: "guard unset assigns missing value",
			src:  `{% set c = "y" ! unset %}{{ c }}`,
			want: "y",
		},
		{
			name: "guard setted overrides",
			src:  `{% set a = "1" %}{% set a = "2" ! setted %}{{ a }}`,
			want: "2",
		},
		{
			name: "guard setted skips missing",
			src:  `{% set a = "2" ! setted %}{% set a = "3" ! unset %}{{ a }}`,
			want: "3",
		},
		{
			name: "if true",
			src:  `{% if a == "x" %}Y{% endif %}`,
			vars: map[string]string{"a": "x"},
			want: "Y",
		},
		{
			name: "if false",
			src:  `[{% if a == "x" %}Y{% endif %}]`,
			vars: map[string]string{"a": "z"},
			want: "[]",
		},
		{
			name: "nested if",
			src:  `{% if a == "1" %}{% if b == "2" %}X{% endif %}Y{% endif %}`,
			vars: map[string]string{"a": "1", "b": "3"},
			want: "Y",
		},
		{
			name: "for default separator",
			src:  `{% for v in "1\n2\n3" %}{{ v }},{% endfor %}`,
			want: "1,2,3,",
		},
		{
			name: "for custom separator",
			src:  `{% for v in "a,b" ! "," %}[{{ v }}]{% endfor %}`,
			want: "[a][b]",
		},
		{
			name: "for over variable",
			src:  `{% for v in list %}<{{ v }}>{% endfor %}`,
			vars: map[string]string{"list": "p\nq"},
			want: "<p><q>",
		},
		{
			name: "for with quotes in items",
			src:  `{% for v in list %}{{ v }}{% endfor %}`,
			vars: map[string]string{"list": `say "hi"`},
			want: `say "hi"`,
		},
		{
			name: "nested for",
			src:  `{% for a in "1,2" ! "," %}{% for b in "x,y" ! "," %}{{ b }} {% endfor %}{% endfor %}`,
			want: "x y x y ",
		},
		{
			name: "block and call",
			src:  `{% block greet %}Hi{% endblock %}{% call greet %}{% call greet %}`,
			want: "HiHi",
		},
		{
			name: "block resolved at call",
			src:  `{% block greet %}Hi {{ who }}{% endblock %}{% set who = "you" %}{% call greet %}`,
			want: "Hi you",
		},
		{
			name: "block named by text",
			src:  `{% block "a b" %}z{% endblock %}{% call "a b" %}`,
			want: "z",
		},
		{
			name: "raw",
			src:  `{% raw %}{{ not a var }}{% endraw %}`,
			want: "{{ not a var }}",
		},
		{
			name: "raw in loop body",
			src:  `{% for v in "1,2" ! "," %}{% raw %}{{ v }}{% endraw %}{% endfor %}`,
			want: "{{ v }}{{ v }}",
		},
		{
			name: "nested raw",
			src:  `{% raw %}a{% raw %}b{% endraw %}c{% endraw %}`,
			want: "a{% raw %}b{% endraw %}c",
		},
		{
			name: "raw after closing brace",
			src:  "x}{% raw %}}{% endraw %}",
			want: "x}}",
		},
		{
			name: "raw after generated opening brace",
			src:  `{{ "{" }}{% raw %}{y}{% endraw %}`,
			want: "{{y}",
		},
		{
			name: "comments are dropped",
			src:  "a{# hidden #}b",
			want: "ab",
		},
		{
			name: "indirection",
			src:  "{{ $k }}",
			vars: map[string]string{"$k": "real", "real": "value"},
			want: "value",
		},
		{
			name: "set through indirection",
			src:  `{% set $k = "v" %}{{ real }}`,
			vars: map[string]string{"$k": "real"},
			want: "v",
		},
		{
			name: "execute text pipe",
			src:  `{% execute x = text.trim("  hi ") | text.uppercase() %}{{ x }}`,
			want: "HI",
		},
		{
			name: "execute vector result",
			src:  `{% execute x = text.lowercase("A" "B") %}{{ x }}`,
			want: "a\nb",
		},
		{
			name: "execute symbol result",
			src:  `{% set v = "val" %}{% execute x = macro.convert_to_symbol("v") %}{{ x }}`,
			want: "val",
		},
		{
			name: "execute expr",
			src:  `{% execute x = expr.eval("1 + 2") %}{{ x }}`,
			want: "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithEnvironment(NewEnvironment(tt.vars)))

			got, err := e.Render(t.Context(), tt.src)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngineRender_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		want error
	}{
		{
			name: "undefined variable",
			src:  "{{ y }}",
			want: ErrUndefinedVariable,
		},
		{
			name: "unfinished if",
			src:  `{% if a == "x" %}Y`,
			want: ErrUnfinishedBlock,
		},
		{
			name: "unfinished for",
			src:  `{% for v in "a" %}{% endif %}`,
			want: ErrUnfinishedBlock,
		},
		{
			name: "stray end statement",
			src:  `{% endif %}`,
			want: ErrUnknownStatement,
		},
		{
			name: "unknown statement",
			src:  `{% sett a = "1" %}`,
			want: ErrUnknownStatement,
		},
		{
			name: "empty statement",
			src:  `{%  %}`,
			want: ErrEmptyStatement,
		},
		{
			name: "statement starting with text",
			src:  `{% "set" %}`,
			want: ErrUnexpectedToken,
		},
		{
			name: "set without equal sign",
			src:  `{% set a "1" %}`,
			want: ErrUnexpectedToken,
		},
		{
			name: "set without value",
			src:  `{% set a = %}`,
			want: ErrEmptyExpression,
		},
		{
			name: "set with unknown guard",
			src:  `{% set a = "1" ! maybe %}`,
			want: ErrUnexpectedToken,
		},
		{
			name: "undefined block",
			src:  `{% call nothing %}`,
			want: ErrUndefinedBlock,
		},
		{
			name: "trailing tokens",
			src:  `{% call "a" b %}`,
			want: ErrUnexpectedToken,
		},
		{
			name: "empty separator",
			src:  `{% for v in "ab" ! "" %}{% endfor %}`,
			want: ErrIncompleteStatement,
		},
		{
			name: "extensions disabled",
			src:  `{% execute x = text.trim("a") %}`,
			opts: []Option{WithoutExtensions()},
			want: ErrExtensionsDisabled,
		},
		{
			name: "unknown extension",
			src:  `{% execute x = nope.trim("a") %}`,
			want: ErrExtension,
		},
		{
			name: "malformed function name",
			src:  `{% execute x = trim("a") %}`,
			want: ErrUnexpectedToken,
		},
		{
			name: "unclosed arguments",
			src:  `{% execute x = text.trim("a" %}`,
			want: ErrIncompleteStatement,
		},
		{
			name: "missing pipe",
			src:  `{% execute x = text.trim("a") text.trim("b") %}`,
			want: ErrUnexpectedToken,
		},
		{
			name: "cast of undefined symbol",
			src:  `{% execute x = macro.convert_to_symbol("nope") %}`,
			want: ErrCast,
		},
		{
			name: "segmentation error",
			src:  "a }} b",
			want: ErrUnauthorizedTransition,
		},
		{
			name: "for item containing a marker",
			src:  `{% for v in list %}{{ v }}{% endfor %}`,
			opts: []Option{WithEnvironment(NewEnvironment(map[string]string{"list": "a{{b"}))},
			want: ErrUnauthorizedTransition,
		},
		{
			name: "self-reproducing block",
			src:  `{% block a %}{% call a %}{% endblock %}{% call a %}`,
			want: ErrExpansionCycle,
		},
		{
			name: "growing expansion",
			src:  `{% block a %}x{% call a %}{% endblock %}{% call a %}`,
			opts: []Option{WithMaxPasses(5)},
			want: ErrTooManyPasses,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...).Render(t.Context(), tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("Render() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEngineRender_StatementContext(t *testing.T) {
	_, err := New().Render(t.Context(), `ab{% sett a = "1" %}`)
	if !errors.Is(err, ErrStatement) {
		t.Fatalf("expected ErrStatement, got %v", err)
	}

	for _, want := range []string{"kind=sett", "offset=2", "did you mean 'set'?"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not contain %q", err, want)
		}
	}
}

func TestEngineRender_NotReentrant(t *testing.T) {
	e := New(WithReentrant(false))

	got, err := e.Render(t.Context(), `{% for v in "x" %}{{ v }}{% endfor %}`)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if want := `{% set v = "x" %}{{ v }}`; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestEngineRender_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := New().Render(ctx, "text"); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestEngineRender_SharedEnvironment(t *testing.T) {
	e := New()

	if _, err := e.Render(t.Context(), `{% set a = "1" %}{% block b %}B{% endblock %}`); err != nil {
		t.Fatalf("first Render() error: %v", err)
	}

	got, err := e.Render(t.Context(), `{{ a }}{% call b %}`)
	if err != nil {
		t.Fatalf("second Render() error: %v", err)
	}

	if got != "1B" {
		t.Errorf("second Render() = %q, want %q", got, "1B")
	}
}

func TestEngineResolve_NoChange(t *testing.T) {
	doc := NewDocument("nothing to do")

	changed, err := New().Resolve(t.Context(), doc)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if changed {
		t.Error("Resolve() reported a change for static text")
	}

	if doc.Source() != "nothing to do" {
		t.Errorf("Source() = %q", doc.Source())
	}
}

func TestEngineRenderReader(t *testing.T) {
	got, err := New().RenderReader(t.Context(), strings.NewReader(`{{ "ok" }}`))
	if err != nil {
		t.Fatalf("RenderReader() error: %v", err)
	}

	if got != "ok" {
		t.Errorf("RenderReader() = %q", got)
	}
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEngineRender_Include(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "inc.txt"), "Hello {{ name }}")

	tests := []struct {
		name string
		src  string
		want string
		err  error
	}{
		{
			name: "literal path",
			src:  `{% include "inc.txt" %}!`,
			want: "Hello World!",
		},
		{
			name: "path from variable",
			src:  `{% set p = "inc.txt" %}{% include p %}`,
			want: "Hello World",
		},
		{
			name: "missing file",
			src:  `{% include "nope.txt" %}`,
			err:  ErrPathNotFound,
		},
		{
			name: "directory",
			src:  `{% include "." %}`,
			err:  ErrNotRegularFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(
				WithBaseDir(dir),
				WithEnvironment(NewEnvironment(map[string]string{"name": "World"})),
			)

			got, err := e.Render(t.Context(), tt.src)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Render() error = %v, want %v", err, tt.err)
				}

				if !errors.Is(err, ErrInclude) {
					t.Errorf("error %v is not wrapped by ErrInclude", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngineRender_Find(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "")
	writeFile(t, filepath.Join(dir, "b.txt"), "")
	writeFile(t, filepath.Join(dir, "c.md"), "")
	writeFile(t, filepath.Join(dir, "sub", "d.txt"), "")

	tests := []struct {
		name string
		src  string
		want string
		err  error
	}{
		{
			name: "files with wildcard",
			src:  `{% find files in "*.txt" to f ! "," %}{{ f }}`,
			want: "./a.txt,./b.txt",
		},
		{
			name: "separator before destination",
			src:  `{% find files in "*.txt" ! "," to f %}{{ f }}`,
			want: "./a.txt,./b.txt",
		},
		{
			name: "separator in both positions",
			src:  `{% find files in "*.txt" ! "," to f ! ";" %}`,
			err:  ErrUnexpectedToken,
		},
		{
			name: "directory prefix wildcard",
			src:  `{% find files in "sub/*.txt" to f %}{{ f }}`,
			want: "sub/d.txt",
		},
		{
			name: "directories",
			src:  `{% find directories in "." to f %}{{ f }}`,
			want: "./sub",
		},
		{
			name: "all entries",
			src:  `{% find all in "sub" to f %}{{ f }}`,
			want: "sub/d.txt",
		},
		{
			name: "default separator",
			src:  `{% find files in "./" to f %}{{ f }}`,
			want: "./a.txt\n./b.txt\n./c.md",
		},
		{
			name: "regular file",
			src:  `{% find all in "c.md" to f %}{{ f }}`,
			want: "c.md",
		},
		{
			name: "no match",
			src:  `[{% find files in "*.go" to f %}{{ f }}]`,
			want: "[]",
		},
		{
			name: "empty pattern",
			src:  `{% find files in "" to f %}`,
			err:  ErrEmptyPattern,
		},
		{
			name: "missing path",
			src:  `{% find files in "nope/*" to f %}`,
			err:  ErrPathNotFound,
		},
		{
			name: "bad search type",
			src:  `{% find links in "." to f %}`,
			err:  ErrUnexpectedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(WithBaseDir(dir)).Render(t.Context(), tt.src)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Render() error = %v, want %v", err, tt.err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}
