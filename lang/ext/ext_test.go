package ext

import (
	"bytes"
	"errors"
	"iter"
	"maps"
	"os"
	"reflect"
	"strings"
	"testing"
)

// scope is a map-backed Scope.
type scope map[string]string

func (s scope) Lookup(key string) (string, bool) {
	v, ok := s[key]

	return v, ok
}

func (s scope) Vars() iter.Seq2[string, string] { return maps.All(s) }

func TestRegistryExecute_Text(t *testing.T) {
	tests := []struct {
		name   string
		fn     string
		result Value
		args   []Value
		want   Value
	}{
		{
			name: "uppercase args",
			fn:   "uppercase",
			args: []Value{Text("ab"), Symbol("cd")},
			want: Vector{Text("AB"), Symbol("CD")},
		},
		{
			name:   "uppercase piped",
			fn:     "uppercase",
			result: Vector{Text("x"), Vector{Text("y")}},
			want:   Vector{Text("X"), Vector{Text("Y")}},
		},
		{
			name: "lowercase unicode",
			fn:   "lowercase",
			args: []Value{Text("ÀB")},
			want: Vector{Text("àb")},
		},
		{
			name: "ascii uppercase leaves other letters",
			fn:   "ascii_uppercase",
			args: []Value{Text("àb")},
			want: Vector{Text("àB")},
		},
		{
			name:   "ascii lowercase piped",
			fn:     "ascii_lowercase",
			result: Text("ÀB"),
			want:   Text("Àb"),
		},
		{
			name:   "trim",
			fn:     "trim",
			result: Text(" \t x \n"),
			want:   Text("x"),
		},
		{
			name: "trim start",
			fn:   "trim_start",
			args: []Value{Text("  x  ")},
			want: Vector{Text("x  ")},
		},
		{
			name: "trim end",
			fn:   "trim_end",
			args: []Value{Text("  x  ")},
			want: Vector{Text("  x")},
		},
		{
			name:   "numbers pass through",
			fn:     "uppercase",
			result: Number(1),
			want:   Number(1),
		},
	}

	r := Builtin()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Execute(t.Context(), "text", tt.fn, &Call{
				Result: tt.result,
				Args:   tt.args,
			})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Execute() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRegistryExecute_Macro(t *testing.T) {
	r := Builtin()

	tests := []struct {
		name    string
		fn      string
		call    Call
		want    Value
		wantErr error
	}{
		{
			name: "text from symbol name",
			fn:   "convert_to_text",
			call: Call{Args: []Value{Symbol("name")}},
			want: Text("name"),
		},
		{
			name: "text from vector",
			fn:   "convert_to_text",
			call: Call{Result: Vector{Text("a"), Number(1.5), Bool(true), Bool(false)}},
			want: Text("a1.5true"),
		},
		{
			name: "symbol from text",
			fn:   "convert_to_symbol",
			call: Call{Args: []Value{Text("key")}},
			want: Symbol("key"),
		},
		{
			name:    "no input",
			fn:      "convert_to_text",
			call:    Call{},
			wantErr: ErrArgument,
		},
		{
			name:    "too many arguments",
			fn:      "convert_to_text",
			call:    Call{Args: []Value{Text("a"), Text("b")}},
			wantErr: ErrArgument,
		},
		{
			name:    "empty symbol",
			fn:      "convert_to_symbol",
			call:    Call{Result: Void{}},
			wantErr: ErrArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Execute(t.Context(), "macro", tt.fn, &tt.call)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Execute() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRegistryExecute_NotFound(t *testing.T) {
	r := Builtin()

	_, err := r.Execute(t.Context(), "txt", "trim", &Call{})
	if !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("error = %v, want ErrModuleNotFound", err)
	}

	if !strings.Contains(err.Error(), "did you mean 'text'?") {
		t.Errorf("error %q has no suggestion", err)
	}

	_, err = r.Execute(t.Context(), "text", "upper", &Call{})
	if !errors.Is(err, ErrFunctionNotFound) {
		t.Fatalf("error = %v, want ErrFunctionNotFound", err)
	}

	if !strings.Contains(err.Error(), "uppercase") {
		t.Errorf("error %q has no suggestion", err)
	}
}

func TestExprEval(t *testing.T) {
	r := Builtin()
	vars := scope{"n": "4", "greeting": "hi"}

	tests := []struct {
		name    string
		call    Call
		want    Value
		wantErr error
	}{
		{
			name: "arithmetic",
			call: Call{Args: []Value{Text("1 + 2")}},
			want: Number(3),
		},
		{
			name: "variables in scope",
			call: Call{Args: []Value{Text(`greeting + "!"`)}},
			want: Text("hi!"),
		},
		{
			name: "boolean",
			call: Call{Args: []Value{Text(`n == "4"`)}},
			want: Bool(true),
		},
		{
			name: "piped value",
			call: Call{Result: Text("x"), Args: []Value{Text(`pipe + pipe`)}},
			want: Text("xx"),
		},
		{
			name: "expression from variable",
			call: Call{Args: []Value{Symbol("src")}},
			want: Text("hi"),
		},
		{
			name: "array",
			call: Call{Args: []Value{Text(`[1, "a"]`)}},
			want: Vector{Number(1), Text("a")},
		},
		{
			name:    "compile error",
			call:    Call{Args: []Value{Text("1 +")}},
			wantErr: ErrEvaluate,
		},
		{
			name:    "no expression",
			call:    Call{},
			wantErr: ErrArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := maps.Clone(vars)
			s["src"] = "greeting"
			tt.call.Scope = s

			got, err := r.Execute(t.Context(), "expr", "eval", &tt.call)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Execute() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPathPrefix(t *testing.T) {
	r := Builtin()
	sep := string(os.PathListSeparator)

	got, err := r.Execute(t.Context(), "path", "prefix", &Call{
		Args:  []Value{Symbol("list"), Text("/opt/bin")},
		Scope: scope{"list": "/usr/bin" + sep + "/bin"},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	s := Concat(got)
	if !strings.HasPrefix(s, "/opt/bin"+sep) || !strings.Contains(s, "/usr/bin") {
		t.Errorf("prefix = %q", s)
	}

	dir := t.TempDir()

	got, err = r.Execute(t.Context(), "path", "prefix_dirs", &Call{
		Result: Text("/usr/bin"),
		Args:   []Value{Text(dir)},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if s := Concat(got); !strings.HasPrefix(s, dir) {
		t.Errorf("prefix_dirs = %q", s)
	}

	if _, err := r.Execute(t.Context(), "path", "prefix", &Call{}); !errors.Is(err, ErrArgument) {
		t.Errorf("error = %v, want ErrArgument", err)
	}
}

func TestYAMLGet(t *testing.T) {
	r := Builtin()
	doc := "server:\n  port: 8080\n  hosts:\n    - a\n    - b\n"

	tests := []struct {
		name    string
		call    Call
		want    Value
		wantErr error
	}{
		{
			name: "scalar",
			call: Call{Args: []Value{Text("$.server.port"), Text(doc)}},
			want: Number(8080),
		},
		{
			name: "sequence from pipe",
			call: Call{Result: Text(doc), Args: []Value{Text("$.server.hosts")}},
			want: Vector{Text("a"), Text("b")},
		},
		{
			name: "document from variable",
			call: Call{Args: []Value{Text("$.server.hosts[1]"), Symbol("doc")}},
			want: Text("b"),
		},
		{
			name:    "bad path",
			call:    Call{Args: []Value{Text("server"), Text(doc)}},
			wantErr: ErrEvaluate,
		},
		{
			name:    "missing document",
			call:    Call{Args: []Value{Text("$.a")}},
			wantErr: ErrArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.call.Scope = scope{"doc": doc}

			got, err := r.Execute(t.Context(), "yaml", "get", &tt.call)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Execute() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCast(t *testing.T) {
	vars := scope{"k": "v"}

	tests := []struct {
		name    string
		value   Value
		want    string
		wantErr bool
	}{
		{"nil", nil, "", false},
		{"void", Void{}, "", false},
		{"text", Text("t"), "t", false},
		{"symbol", Symbol("k"), "v", false},
		{"undefined symbol", Symbol("x"), "", true},
		{"integer", Number(42), "42", false},
		{"fraction", Number(0.25), "0.25", false},
		{"true", Bool(true), "true", false},
		{"false", Bool(false), "", false},
		{"vector", Vector{Text("a"), Symbol("k"), Vector{Number(1)}}, "a\nv\n1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cast(tt.value, vars)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Cast() error = %v, wantErr %v", err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("Cast() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Void{}},
		{"string", "s", Text("s")},
		{"bool", true, Bool(true)},
		{"int", 7, Number(7)},
		{"uint64", uint64(8), Number(8)},
		{"float", 1.5, Number(1.5)},
		{"slice", []any{"a", 1}, Vector{Text("a"), Number(1)}},
		{"typed slice", []string{"x"}, Vector{Text("x")}},
		{"map", map[string]any{"a": 1}, Text("a: 1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromAny(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromAny(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegistryHelp(t *testing.T) {
	var buf bytes.Buffer

	if err := Builtin().Help(&buf); err != nil {
		t.Fatalf("Help() error: %v", err)
	}

	for _, name := range Builtin().Names() {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("help does not mention %s", name)
		}
	}
}
