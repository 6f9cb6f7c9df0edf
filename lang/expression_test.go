package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	vars := map[string]string{
		"x":    "5",
		"$k":   "real",
		"$b":   "missing",
		"real": "value",
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
		mention string
	}{
		{name: "concatenate text", body: ` "a" + "b" `, want: "ab"},
		{name: "variable", body: " x ", want: "5"},
		{name: "mixed", body: `"x=" + x + ";"`, want: "x=5;"},
		{name: "escaped text", body: `"say \"hi\""`, want: `say "hi"`},
		{name: "indirection", body: "$k", want: "value"},
		{
			name:    "undefined variable",
			body:    "y",
			wantErr: ErrUndefinedVariable,
			mention: "name=y",
		},
		{
			name:    "broken indirection target",
			body:    "$b",
			wantErr: ErrUndefinedVariable,
			mention: "name=missing",
		},
		{
			name:    "missing indirection key",
			body:    "$z",
			wantErr: ErrBrokenIndirection,
			mention: "name=$z",
		},
		{name: "leading operator", body: `+ "a"`, wantErr: ErrOperatorPlacement},
		{name: "doubled operator", body: `"a" + + "b"`, wantErr: ErrOperatorPlacement},
		{name: "trailing operator", body: `"a" +`, wantErr: ErrOperatorPlacement},
		{name: "missing operator", body: `"a" "b"`, wantErr: ErrMissingOperator},
		{name: "empty", body: "  ", wantErr: ErrEmptyExpression},
		{name: "unsupported operator", body: `"a" - "b"`, wantErr: ErrUnexpectedToken},
		{name: "lexical error", body: `"a`, wantErr: ErrUnterminatedText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.body, NewEnvironment(vars))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Evaluate() error = %v, want %v", err, tt.wantErr)
				}

				if tt.mention != "" && !strings.Contains(err.Error(), tt.mention) {
					t.Errorf("error %q does not mention %q", err, tt.mention)
				}

				return
			}

			if err != nil {
				t.Fatalf("Evaluate() unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Evaluate() = %q, want %q", got, tt.want)
			}
		})
	}
}
