package components

import (
	"github.com/charmbracelet/lipgloss"

	"lazyddb/internal/ui/theme"
)

// Loading is the modal shown while a fetch is outstanding and the view has
// nothing useful to draw yet.
type Loading struct {
	Theme   theme.Theme
	Width   int
	Message string
}

// View renders the loading dialog.
func (l Loading) View() string {
	msg := l.Message
	if msg == "" {
		msg = "Loading..."
	}
	style := lipgloss.NewStyle().Foreground(l.Theme.Info).Bold(true)

	panel := Panel{
		Title:   "Loading",
		Content: " " + style.Render(msg),
		Width:   l.Width,
		Height:  3,
		Focused: true,
		Theme:   l.Theme,
	}
	return panel.View()
}
