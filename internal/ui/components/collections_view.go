package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lazyddb/internal/filter"
	"lazyddb/internal/models"
	"lazyddb/internal/ui/theme"
)

// CollectionsView lists the store's tables with live fuzzy filtering.
type CollectionsView struct {
	Theme     theme.Theme
	Width     int
	Height    int
	Focused   bool
	Filtering bool
	Input     textinput.Model

	names     []string
	filtered  []string
	selection models.Selection
}

// NewCollectionsView creates an empty collections list.
func NewCollectionsView(th theme.Theme) *CollectionsView {
	ti := textinput.New()
	ti.Placeholder = "filter tables"
	ti.CharLimit = 256
	ti.Prompt = "/"

	return &CollectionsView{
		Theme:     th,
		Input:     ti,
		selection: models.NewSelection(),
	}
}

// SetCollections replaces the canonical name set and re-derives the view.
func (cv *CollectionsView) SetCollections(names []string) {
	cv.names = names
	cv.ApplyFilter()
}

// ApplyFilter re-derives the filtered view from the current filter text and
// resets the selection to the first row.
func (cv *CollectionsView) ApplyFilter() {
	cv.filtered = filter.Names(cv.names, cv.Input.Value())
	cv.selection.First(len(cv.filtered))
}

// ResetFilter clears the filter text and restores the full view.
func (cv *CollectionsView) ResetFilter() {
	cv.Input.SetValue("")
	cv.ApplyFilter()
}

// UpdateInput forwards a key event to the filter input and re-derives the
// view after every edit.
func (cv *CollectionsView) UpdateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	cv.Input, cmd = cv.Input.Update(msg)
	cv.ApplyFilter()
	return cmd
}

// SelectedName returns the highlighted table name.
func (cv *CollectionsView) SelectedName() (string, bool) {
	i, ok := cv.selection.Selected()
	if !ok || i >= len(cv.filtered) {
		return "", false
	}
	return cv.filtered[i], true
}

// Len returns the filtered view length.
func (cv *CollectionsView) Len() int { return len(cv.filtered) }

func (cv *CollectionsView) Next()     { cv.selection.Next(len(cv.filtered)) }
func (cv *CollectionsView) Previous() { cv.selection.Previous(len(cv.filtered)) }
func (cv *CollectionsView) First()    { cv.selection.First(len(cv.filtered)) }
func (cv *CollectionsView) Last()     { cv.selection.Last(len(cv.filtered)) }

func (cv *CollectionsView) ScrollUp(n int)   { cv.selection.ScrollUp(n, len(cv.filtered)) }
func (cv *CollectionsView) ScrollDown(n int) { cv.selection.ScrollDown(n, len(cv.filtered)) }

// View renders the table list panel.
func (cv *CollectionsView) View() string {
	listHeight := cv.Height - 2 // title + filter line
	if listHeight < 1 {
		listHeight = 1
	}

	selected, hasSelection := cv.selection.Selected()
	start, end := listWindow(len(cv.filtered), listHeight, cv.selection.ScrollPos())

	selectedStyle := lipgloss.NewStyle().
		Background(cv.Theme.Selection).
		Foreground(cv.Theme.Foreground).
		Bold(true)

	var lines []string
	for i := start; i < end; i++ {
		line := padLine(cv.filtered[i], cv.Width-4)
		if hasSelection && i == selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, " "+line)
	}
	for len(lines) < listHeight {
		lines = append(lines, "")
	}

	if cv.Filtering {
		lines = append(lines, " "+cv.Input.View())
	} else if cv.Input.Value() != "" {
		dimmed := lipgloss.NewStyle().Foreground(cv.Theme.JSONNull)
		lines = append(lines, dimmed.Render(" /"+cv.Input.Value()))
	} else {
		lines = append(lines, "")
	}

	panel := Panel{
		Title:   fmt.Sprintf("Tables (%d)", len(cv.filtered)),
		Content: joinLines(lines),
		Width:   cv.Width,
		Height:  cv.Height,
		Focused: cv.Focused,
		Theme:   cv.Theme,
	}
	return panel.View()
}
