package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/ardnew/moustache/lang"
)

func TestWriteTrace(t *testing.T) {
	_, err := lang.New().Render(t.Context(), `{% set x = y %}`)
	if err == nil {
		t.Fatal("Render() succeeded")
	}

	var buf bytes.Buffer
	if err := writeTrace(&buf, err); err != nil {
		t.Fatalf("writeTrace() error: %v", err)
	}

	got := buf.String()

	for _, want := range []string{
		"ERROR FOUND",
		"[0] >> statement failed\n",
		"       kind=set\n",
		"       offset=0\n",
		"[1] >> undefined variable\n",
		"       name=y\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("trace does not contain %q:\n%s", want, got)
		}
	}

	if strings.Index(got, "[0]") > strings.Index(got, "[1]") {
		t.Errorf("trace not outermost first:\n%s", got)
	}
}

func TestWriteTrace_PlainErrors(t *testing.T) {
	err := lang.ErrInclude.Wrap(fmt.Errorf("open a: %w", fs.ErrNotExist))

	var buf bytes.Buffer
	if err := writeTrace(&buf, err); err != nil {
		t.Fatalf("writeTrace() error: %v", err)
	}

	got := buf.String()

	if !strings.Contains(got, "[1] >> open a: file does not exist\n") {
		t.Errorf("missing wrapped error:\n%s", got)
	}

	if strings.Contains(got, "[2]") {
		t.Errorf("cause of plain error repeated:\n%s", got)
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("chain broken")
	}
}
