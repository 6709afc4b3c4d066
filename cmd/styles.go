package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/Tiliavir/flex-ledger/internal/report"
)

// stylesFor returns report styles for the --color mode, or nil for plain
// text. In auto mode colour is used only when w is a terminal.
func stylesFor(mode string, w io.Writer) *report.Styles {
	var r *lipgloss.Renderer
	switch mode {
	case "never":
		return nil
	case "always":
		r = lipgloss.NewRenderer(w, termenv.WithProfile(termenv.ANSI256))
	default:
		f, ok := w.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return nil
		}
		r = lipgloss.NewRenderer(w)
	}

	return &report.Styles{
		Header:  r.NewStyle().Bold(true),
		Live:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"}),
		Summary: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "245"}),
		Deficit: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}),
	}
}
