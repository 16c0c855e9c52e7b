package logging

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorPrimary = lipgloss.Color("39")  // Blue
	ColorSuccess = lipgloss.Color("34")  // Green
	ColorWarning = lipgloss.Color("214") // Orange
	ColorError   = lipgloss.Color("196") // Red
	ColorMuted   = lipgloss.Color("240") // Dark gray
)

// Symbols for visual feedback.
const (
	SymbolCheck = "✓"
	SymbolCross = "✗"
)

// Styles renders log prefixes and the import summary. The zero value renders
// plain text.
type Styles struct {
	Verbose lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	color   bool
}

// NewStyles returns colour styles bound to w, or plain ones when colour is off.
func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		return Styles{
			Verbose: r.NewStyle(),
			Error:   r.NewStyle(),
			Success: r.NewStyle(),
			Warning: r.NewStyle(),
			Muted:   r.NewStyle(),
			Bold:    r.NewStyle(),
		}
	}
	return Styles{
		Verbose: r.NewStyle().Foreground(ColorMuted),
		Error:   r.NewStyle().Foreground(ColorError).Bold(true),
		Success: r.NewStyle().Foreground(ColorSuccess),
		Warning: r.NewStyle().Foreground(ColorWarning),
		Muted:   r.NewStyle().Foreground(ColorMuted),
		Bold:    r.NewStyle().Foreground(ColorPrimary).Bold(true),
		color:   true,
	}
}

// Colored reports whether the styles emit ANSI sequences.
func (s Styles) Colored() bool { return s.color }
