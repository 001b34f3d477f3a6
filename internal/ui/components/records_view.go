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

// RecordsView lists the records of the selected table. It owns the raw
// record buffer (replaced on a fresh scan, appended to on lazy load), the
// fuzzy-filtered projection of it, and the selection over that projection.
type RecordsView struct {
	Theme     theme.Theme
	Width     int
	Height    int
	Focused   bool
	Filtering bool
	Input     textinput.Model

	Title string

	records     []models.Record
	filtered    []models.Record
	selection   models.Selection
	approxCount int64
}

// NewRecordsView creates an empty records list.
func NewRecordsView(th theme.Theme) *RecordsView {
	ti := textinput.New()
	ti.Placeholder = "filter records"
	ti.CharLimit = 256
	ti.Prompt = "/"

	return &RecordsView{
		Theme:     th,
		Title:     "Data",
		Input:     ti,
		selection: models.NewSelection(),
	}
}

// Clear wipes the buffer for a fresh collection selection.
func (rv *RecordsView) Clear() {
	rv.records = nil
	rv.filtered = nil
	rv.selection.SelectNone()
	rv.approxCount = 0
	rv.Input.SetValue("")
}

// Replace swaps in a whole new record buffer (first page or query result).
func (rv *RecordsView) Replace(records []models.Record) {
	rv.records = records
	rv.applyFilter()
	rv.selection.First(len(rv.filtered))
}

// Append extends the raw buffer with a continuation page. The filtered view
// is re-derived so it stays consistent with the live dataset; the selection
// survives because the view only grows.
func (rv *RecordsView) Append(records []models.Record) {
	rv.records = append(rv.records, records...)
	rv.applyFilter()
	rv.selection.Clamp(len(rv.filtered))
}

// ApplyFilter re-derives the filtered view and snaps the selection to the
// first row, as after any filter edit.
func (rv *RecordsView) ApplyFilter() {
	rv.applyFilter()
	rv.selection.First(len(rv.filtered))
}

func (rv *RecordsView) applyFilter() {
	rv.filtered = filter.Records(rv.records, rv.Input.Value())
}

// ResetFilter clears filter text and restores the full view.
func (rv *RecordsView) ResetFilter() {
	rv.Input.SetValue("")
	rv.ApplyFilter()
}

// UpdateInput forwards a key event to the filter input and re-runs the
// filter after every character insertion or deletion.
func (rv *RecordsView) UpdateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	rv.Input, cmd = rv.Input.Update(msg)
	rv.ApplyFilter()
	return cmd
}

// SetApproximateCount stores the display-only cardinality estimate.
func (rv *RecordsView) SetApproximateCount(count int64) {
	rv.approxCount = count
}

// RawLen returns the raw buffer length (the lazy-load proximity test runs
// against this, not the filtered view).
func (rv *RecordsView) RawLen() int { return len(rv.records) }

// Len returns the filtered view length.
func (rv *RecordsView) Len() int { return len(rv.filtered) }

// SelectedIndex returns the selected index into the filtered view.
func (rv *RecordsView) SelectedIndex() (int, bool) {
	return rv.selection.Selected()
}

// SelectedRecord returns the highlighted record.
func (rv *RecordsView) SelectedRecord() (models.Record, bool) {
	i, ok := rv.selection.Selected()
	if !ok || i >= len(rv.filtered) {
		return models.Record{}, false
	}
	return rv.filtered[i], true
}

func (rv *RecordsView) Next()     { rv.selection.Next(len(rv.filtered)) }
func (rv *RecordsView) Previous() { rv.selection.Previous(len(rv.filtered)) }
func (rv *RecordsView) First()    { rv.selection.First(len(rv.filtered)) }
func (rv *RecordsView) Last()     { rv.selection.Last(len(rv.filtered)) }

func (rv *RecordsView) ScrollUp(n int)   { rv.selection.ScrollUp(n, len(rv.filtered)) }
func (rv *RecordsView) ScrollDown(n int) { rv.selection.ScrollDown(n, len(rv.filtered)) }

// StatusLine is the summary under the list: filtered count plus the store's
// approximate total. "Viewing" signals an active filter.
func (rv *RecordsView) StatusLine() string {
	mode := "Fetched"
	if rv.Input.Value() != "" {
		mode = "Viewing"
	}
	return fmt.Sprintf("%s %d Items (Scanned: %d)", mode, len(rv.filtered), rv.approxCount)
}

// View renders the records panel.
func (rv *RecordsView) View() string {
	listHeight := rv.Height - 2 // title + status/filter line
	if listHeight < 1 {
		listHeight = 1
	}

	selected, hasSelection := rv.selection.Selected()
	start, end := listWindow(len(rv.filtered), listHeight, rv.selection.ScrollPos())
	bar := scrollbar(len(rv.filtered), rv.selection.ScrollPos(), listHeight)

	selectedStyle := lipgloss.NewStyle().
		Background(rv.Theme.Selection).
		Foreground(rv.Theme.Foreground).
		Bold(true)
	barStyle := lipgloss.NewStyle().Foreground(rv.Theme.Border)

	var lines []string
	for i := start; i < end; i++ {
		line := padLine(rv.filtered[i].Raw, rv.Width-6)
		if hasSelection && i == selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, " "+line+" "+barStyle.Render(bar[i-start]))
	}
	for len(lines) < listHeight {
		lines = append(lines, "")
	}

	statusStyle := lipgloss.NewStyle().Foreground(rv.Theme.Info)
	if rv.Filtering {
		lines = append(lines, " "+rv.Input.View())
	} else {
		lines = append(lines, statusStyle.Render(" "+rv.StatusLine()))
	}

	panel := Panel{
		Title:   rv.Title,
		Content: joinLines(lines),
		Width:   rv.Width,
		Height:  rv.Height,
		Focused: rv.Focused,
		Theme:   rv.Theme,
	}
	return panel.View()
}
