package ext

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Help writes a description of every module and function to w.
func (r *Registry) Help(w io.Writer) error {
	re := lipgloss.NewRenderer(w)

	var (
		module = re.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
		fn     = re.NewStyle().Foreground(lipgloss.Color("6"))
		dim    = re.NewStyle().Foreground(lipgloss.Color("8"))
		body   = re.NewStyle().PaddingLeft(6)
	)

	for _, m := range r.Modules() {
		_, err := fmt.Fprintf(w, "\n  %s %s\n    %s\n",
			dim.Render("♦"), module.Render(m.Name), m.Description)
		if err != nil {
			return err
		}

		for _, f := range m.Functions {
			pipe := "no"
			if f.Pipe {
				pipe = "yes"
			}

			_, err := fmt.Fprintf(w, "\n    %s %s %s\n%s\n",
				dim.Render("↪"),
				fn.Render(m.Name+"."+f.Name),
				dim.Render("(pipe: "+pipe+")"),
				body.Render(f.Description+"\n"+dim.Render("args: ")+f.Args),
			)
			if err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w)

	return err
}
