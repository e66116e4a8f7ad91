package ui

import (
	"fmt"
	"strings"

	"github.com/beemafrica/beem-go/internal/apierr"
)

// FormatError renders err for the terminal. Errors returned by a Beem API
// get a second line naming the family and HTTP status; hints are listed
// under "Try:".
func FormatError(err error, hints ...string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", StyleBoldRed.Render("Error:"), err)
	if apiErr, ok := apierr.As(err); ok && apiErr.StatusCode > 0 {
		fmt.Fprintf(&b, "  %s\n", StyleDim.Render(fmt.Sprintf("%s API answered HTTP %d", apiErr.Family, apiErr.StatusCode)))
	}

	if len(hints) > 0 {
		b.WriteString("\n" + StyleHint.Render("  Try:") + "\n")
		for _, h := range hints {
			fmt.Fprintf(&b, "    %s %s\n", StyleHint.Render(SymbolArrow), h)
		}
	}
	return b.String()
}
