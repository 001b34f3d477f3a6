package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc", "Back to previous view"},
	}
}

// GetNavigationKeys returns navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"g", "Jump to first row"},
		{"G", "Jump to last row"},
		{"Ctrl+U", "Scroll up"},
		{"Ctrl+D", "Scroll down"},
		{"Enter", "Select item / open detail"},
	}
}

// GetTableKeys returns table list key bindings
func GetTableKeys() []KeyBinding {
	return []KeyBinding{
		{"/", "Filter table names"},
		{"Esc", "Clear filter"},
	}
}

// GetDataViewKeys returns data view key bindings
func GetDataViewKeys() []KeyBinding {
	return []KeyBinding{
		{"/", "Filter rows"},
		{"s", "Query by key"},
		{"r", "Re-scan table"},
		{"y", "Copy row as JSON"},
		{"Esc", "Clear filter / back to tables"},
	}
}

// GetDetailKeys returns item detail key bindings
func GetDetailKeys() []KeyBinding {
	return []KeyBinding{
		{"Enter", "Expand or collapse node"},
		{"y", "Copy item as JSON"},
		{"Esc", "Back to data view"},
	}
}

// Render creates the help view
func Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("75")).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var b strings.Builder

	// Title
	b.WriteString(titleStyle.Render("lazyddb - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name string
		keys []KeyBinding
	}{
		{"Global", GetGlobalKeys()},
		{"Navigation", GetNavigationKeys()},
		{"Tables", GetTableKeys()},
		{"Data View", GetDataViewKeys()},
		{"Item Detail", GetDetailKeys()},
	}

	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.name))
		b.WriteString("\n")
		for _, kb := range s.keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	// Wrap in a box
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(width - 4).
		Height(height - 4)

	return boxStyle.Render(b.String())
}
