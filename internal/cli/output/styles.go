package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "!"
	SymbolSkipped = "-"
	SymbolPending = "•"
)

// Styles holds the lipgloss styles used by a Renderer.
type Styles struct {
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
	Muted     lipgloss.Style
	Bold      lipgloss.Style
	Key       lipgloss.Style
	Path      lipgloss.Style
}

func newStyles(out io.Writer, isTTY bool) *Styles {
	lr := lipgloss.NewRenderer(out)
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Header:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Subheader: lr.NewStyle().Bold(true),
		Success:   lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:   lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:     lr.NewStyle().Foreground(lipgloss.Color("9")),
		Info:      lr.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:     lr.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:      lr.NewStyle().Bold(true),
		Key:       lr.NewStyle().Foreground(lipgloss.Color("14")),
		Path:      lr.NewStyle().Foreground(lipgloss.Color("13")),
	}
}
