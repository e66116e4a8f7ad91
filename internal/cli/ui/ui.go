// Package ui holds the beem CLI styles, symbols and terminal checks. Command
// output goes through these helpers so colors degrade the same way everywhere.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ANSI 4-bit colors; lipgloss/termenv degrade them on dumb terminals.
var (
	ColorCyan   = lipgloss.Color("6")
	ColorGreen  = lipgloss.Color("2")
	ColorYellow = lipgloss.Color("3")
	ColorRed    = lipgloss.Color("1")
)

var (
	StyleBold     = lipgloss.NewStyle().Bold(true)
	StyleDim      = lipgloss.NewStyle().Faint(true)
	StyleBoldCyan = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)
	StyleBoldRed  = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(ColorRed)

	StyleLabel = lipgloss.NewStyle().Bold(true).Width(16)
	StyleHint  = lipgloss.NewStyle().Faint(true)
)

const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠"
	SymbolArrow   = "→"
)

var (
	forcedRenderer     *lipgloss.Renderer
	forcedRendererOnce sync.Once
)

// ForcedRenderer returns a renderer that always emits ANSI, for callers that
// already decided color is wanted.
func ForcedRenderer() *lipgloss.Renderer {
	forcedRendererOnce.Do(func() {
		forcedRenderer = lipgloss.NewRenderer(os.Stderr)
		forcedRenderer.SetColorProfile(termenv.ANSI)
	})
	return forcedRenderer
}

// ColorEnabled reports whether stderr is a color-capable TTY.
// NO_COLOR (https://no-color.org/) disables color.
func ColorEnabled() bool {
	return ColorEnabledFd(os.Stderr.Fd())
}

func ColorEnabledFd(fd uintptr) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Field is one labelled line of a result block.
type Field struct {
	Label string
	Value any
}

// WriteFields prints fields as an aligned label/value block. Empty values
// are skipped.
func WriteFields(w io.Writer, fields ...Field) {
	for _, f := range fields {
		v := fmt.Sprint(f.Value)
		if v == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", StyleLabel.Render(f.Label+":"), v)
	}
}

// Status renders a one-line outcome with a check or a cross.
func Status(ok bool, msg string) string {
	if ok {
		return StyleSuccess.Render(SymbolCheck) + " " + msg
	}
	return StyleError.Render(SymbolCross) + " " + msg
}
