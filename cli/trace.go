package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/moustache/pkg"
)

// writeTrace writes the cause chain of err to w, outermost first, one step
// per error:
//
//	[0] >> statement failed
//	       kind=set
//	       offset=12
//	[1] >> undefined variable
//	       name=who
//
// A plain error is shown with its full message, so the errors it wraps are
// omitted.
func writeTrace(w io.Writer, err error) error {
	re := lipgloss.NewRenderer(w)

	var (
		banner  = re.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
		message = re.NewStyle().Foreground(lipgloss.Color("11"))
		detail  = re.NewStyle().Foreground(lipgloss.Color("244"))
	)

	if _, err := fmt.Fprintf(w, "\n-- %s\n\n", banner.Render("ERROR FOUND")); err != nil {
		return err
	}

	for depth, step := range pkg.TraceOf(err).Steps() {
		if _, err := fmt.Fprintf(w, "[%d] >> %s\n", depth, message.Render(step.Msg)); err != nil {
			return err
		}

		for _, a := range step.Attrs {
			line := detail.Render(a.Key + "=" + a.Value.String())
			if _, err := fmt.Fprintf(w, "       %s\n", line); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(w, "-- %s %s\n", pkg.Name, pkg.Version)

	return err
}
