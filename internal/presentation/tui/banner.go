package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the server start banner with the listening address.
func PrintBanner(w io.Writer, version, addr string) {
	out := termenv.NewOutput(w)
	// Same indigo to rose ramp as the report marks.
	name := out.String("cfy-outputs").Foreground(out.Color("#818cf8")).Bold()
	ver := out.String(strings.TrimSpace(version)).Foreground(out.Color("#c084fc"))
	url := out.String(addr).Foreground(out.Color("#fb7185")).Underline()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", name, ver)
	fmt.Fprintf(w, "  listening on %s\n", url)
	fmt.Fprintln(w, "  POST /transform  POST /validate  GET /healthz  GET /metrics")
	fmt.Fprintln(w)
}
