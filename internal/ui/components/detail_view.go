package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lazyddb/internal/models"
	"lazyddb/internal/record"
	"lazyddb/internal/ui/theme"
)

// DetailView shows a single record as a collapsible tree. Expansion state
// lives in the tree and survives leaving and re-entering the view.
type DetailView struct {
	Theme  theme.Theme
	Width  int
	Height int

	tree      *record.Tree
	selection models.Selection
}

// NewDetailView creates a detail view with empty expansion memory.
func NewDetailView(th theme.Theme) *DetailView {
	return &DetailView{
		Theme:     th,
		tree:      record.NewTree(),
		selection: models.NewSelection(),
	}
}

// SetRecord loads a record into the tree and selects its first row.
func (dv *DetailView) SetRecord(rec models.Record) {
	dv.tree.SetRecord(rec)
	dv.selection.First(len(dv.tree.Rows()))
}

// Toggle flips the expansion of the selected row if it has children. The
// selection is clamped because collapsing can shrink the row list.
func (dv *DetailView) Toggle() {
	i, ok := dv.selection.Selected()
	rows := dv.tree.Rows()
	if !ok || i >= len(rows) {
		return
	}
	row := rows[i]
	if !row.HasChildren {
		return
	}
	dv.tree.Toggle(row.Path)
	dv.selection.Clamp(len(dv.tree.Rows()))
}

func (dv *DetailView) Next()     { dv.selection.Next(len(dv.tree.Rows())) }
func (dv *DetailView) Previous() { dv.selection.Previous(len(dv.tree.Rows())) }
func (dv *DetailView) First()    { dv.selection.First(len(dv.tree.Rows())) }
func (dv *DetailView) Last()     { dv.selection.Last(len(dv.tree.Rows())) }

func (dv *DetailView) ScrollUp(n int)   { dv.selection.ScrollUp(n, len(dv.tree.Rows())) }
func (dv *DetailView) ScrollDown(n int) { dv.selection.ScrollDown(n, len(dv.tree.Rows())) }

// View renders the tree rows with expansion markers and typed value colors.
func (dv *DetailView) View() string {
	rows := dv.tree.Rows()
	listHeight := dv.Height - 2
	if listHeight < 1 {
		listHeight = 1
	}

	selected, hasSelection := dv.selection.Selected()
	start, end := listWindow(len(rows), listHeight, dv.selection.ScrollPos())
	bar := scrollbar(len(rows), dv.selection.ScrollPos(), listHeight)

	selectedStyle := lipgloss.NewStyle().
		Background(dv.Theme.Selection).
		Foreground(dv.Theme.Foreground).
		Bold(true)
	barStyle := lipgloss.NewStyle().Foreground(dv.Theme.Border)

	var lines []string
	for i := start; i < end; i++ {
		line := dv.renderRow(rows[i], hasSelection && i == selected, selectedStyle)
		lines = append(lines, " "+line+" "+barStyle.Render(bar[i-start]))
	}
	for len(lines) < listHeight {
		lines = append(lines, "")
	}

	panel := Panel{
		Title:   "Item",
		Content: joinLines(lines),
		Width:   dv.Width,
		Height:  dv.Height,
		Focused: true,
		Theme:   dv.Theme,
	}
	return panel.View()
}

func (dv *DetailView) renderRow(row record.Row, selected bool, selectedStyle lipgloss.Style) string {
	indent := strings.Repeat("  ", row.Depth)

	marker := "  "
	if row.HasChildren {
		if row.Expanded {
			marker = "▼ "
		} else {
			marker = "▶ "
		}
	}

	width := dv.Width - 6
	prefix := indent + marker + row.Key + ": "
	value := dv.valueSummary(row)

	if selected {
		return selectedStyle.Render(padLine(prefix+value, width))
	}

	// Truncate on the plain text so styling escapes don't skew the width.
	if len(prefix) >= width {
		return truncate(prefix, width)
	}
	value = truncate(value, width-len(prefix))

	keyStyle := lipgloss.NewStyle().Foreground(dv.Theme.JSONKey)
	valueStyle := lipgloss.NewStyle().Foreground(dv.valueColor(row))
	return indent + marker + keyStyle.Render(row.Key) + ": " + valueStyle.Render(value)
}

// valueColor picks the theme color for a row's JSON type.
func (dv *DetailView) valueColor(row record.Row) lipgloss.Color {
	switch row.Value.(type) {
	case map[string]any, []any:
		return dv.Theme.Info
	case string:
		return dv.Theme.JSONString
	case float64:
		return dv.Theme.JSONNumber
	case bool:
		return dv.Theme.JSONBoolean
	case nil:
		return dv.Theme.JSONNull
	default:
		return dv.Theme.Foreground
	}
}

// valueSummary is the uncolored form used inside the selection highlight.
func (dv *DetailView) valueSummary(row record.Row) string {
	switch v := row.Value.(type) {
	case map[string]any:
		return fmt.Sprintf("{%d keys}", len(v))
	case []any:
		return fmt.Sprintf("[%d items]", len(v))
	case string:
		return fmt.Sprintf("%q", v)
	case float64:
		return formatNumber(v)
	case bool:
		return fmt.Sprintf("%t", v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}
