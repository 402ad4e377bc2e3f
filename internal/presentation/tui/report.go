package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"

	cloudify "github.com/NotMyFault/cloudify-plugin"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// PrintReport writes a one-line summary of a conversion, plus one line per omitted key.
// Colours are dropped automatically when w is not a terminal.
func PrintReport(w io.Writer, r *cloudify.Report) {
	out := termenv.NewOutput(w)
	ok := out.String("✔").Foreground(out.Color("#34d399"))
	fmt.Fprintf(w, "%s wrote %s (%d bytes, %d resolved, %d omitted) in %s\n",
		ok, r.Destination, r.Bytes, len(r.Resolved), len(r.Omitted), r.Duration.Round(time.Microsecond))

	tag := out.String("omitted").Foreground(out.Color("#fbbf24"))
	for _, key := range r.Omitted {
		fmt.Fprintf(w, "  %s %s\n", tag, key)
	}
}

// PrintError writes err with its class.
func PrintError(w io.Writer, err error) {
	out := termenv.NewOutput(w)
	mark := out.String("✘").Foreground(out.Color("#f87171"))
	fmt.Fprintf(w, "%s %s error: %v\n", mark, domain.Kind(err), err)
}

// PrintValid confirms that a mapping passed validation.
func PrintValid(w io.Writer, entries int) {
	out := termenv.NewOutput(w)
	ok := out.String("✔").Foreground(out.Color("#34d399"))
	fmt.Fprintf(w, "%s mapping is valid (%d entries)\n", ok, entries)
}
