package cmd

import (
	"fmt"
	"os"

	"github.com/ardnew/moustache/lang/ext"
)

// Extensions lists the functions available to execute statements.
type Extensions struct {
	Names bool `help:"Print only the qualified function names" short:"1"`
}

// Run executes the extensions command.
func (e *Extensions) Run() error {
	reg := ext.Builtin()

	if !e.Names {
		return reg.Help(os.Stdout)
	}

	for _, name := range reg.Names() {
		if _, err := fmt.Fprintln(os.Stdout, name); err != nil {
			return err
		}
	}

	return nil
}
