package initializer

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	okLabel   = color.New(color.FgGreen).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	noteLabel = color.New(color.FgYellow).SprintFunc()
)

// Write prints the report one check per line followed by a summary.
// Colors are dropped automatically when stdout is not a terminal or
// NO_COLOR is set.
func (r Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "database %s\n", r.Database); err != nil {
		return err
	}
	for _, c := range r.Checks {
		var err error
		if c.OK {
			_, err = fmt.Fprintf(w, "  %s  %s\n", okLabel("ok  "), c.Name)
		} else {
			_, err = fmt.Fprintf(w, "  %s  %s: %s\n", failLabel("FAIL"), c.Name, c.Detail)
		}
		if err != nil {
			return err
		}
	}
	for _, n := range r.Notes {
		if _, err := fmt.Fprintf(w, "  %s  %s\n", noteLabel("note"), n); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d checks, %d failed\n", len(r.Checks), r.Failed())
	return err
}
