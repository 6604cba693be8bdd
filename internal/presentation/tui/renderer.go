package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// RenderMarkdown pretty-prints markdown for terminal consumption using
// glamour. When stdout is not a TTY the raw markdown passes through
// untouched, so pipes and redirects stay script-friendly.
func RenderMarkdown(markdown string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return markdown
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return markdown
	}

	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
