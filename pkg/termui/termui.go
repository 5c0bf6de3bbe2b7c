// Package termui holds the terminal presentation shared by the command line
// clients.
package termui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Styles are the role and status styles.
type Styles struct {
	Assistant lipgloss.Style
	User      lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
}

// NewStyles binds the styles to w so colors follow what w supports. Output
// that is not a terminal gets plain text.
func NewStyles(w io.Writer, tty bool) Styles {
	r := lipgloss.NewRenderer(w)
	if !tty {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		User:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Error:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Muted:     r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Render formats markdown for the given width. style is a glamour standard
// style name, or "auto" to follow the terminal background.
func Render(markdown, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("could not create markdown renderer: %w", err)
	}
	return r.Render(markdown)
}

// Sanitize drops escape sequences so model output cannot drive the terminal.
func Sanitize(s string) string {
	return ansi.Strip(s)
}

// Width reports whether w is a terminal and its width, or DefaultWidth.
func Width(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return DefaultWidth, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth, true
	}
	return width, true
}
