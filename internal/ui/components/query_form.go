package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lazyddb/internal/models"
	"lazyddb/internal/ui/theme"
)

// QueryForm collects key-equality conditions for the selected table: a
// required partition key value and, when the table has one, an optional
// sort key value. Tab moves focus between the two inputs.
type QueryForm struct {
	Theme  theme.Theme
	Width  int
	Height int

	schema    models.KeySchema
	partition textinput.Model
	sort      textinput.Model
	sortFocus bool
}

// NewQueryForm creates an empty form; call SetSchema before showing it.
func NewQueryForm(th theme.Theme) *QueryForm {
	pk := textinput.New()
	pk.CharLimit = 256
	pk.Prompt = "> "

	sk := textinput.New()
	sk.CharLimit = 256
	sk.Prompt = "> "

	return &QueryForm{Theme: th, partition: pk, sort: sk}
}

// SetSchema binds the form to a table's key schema and resets its state.
func (qf *QueryForm) SetSchema(schema models.KeySchema) {
	qf.schema = schema
	qf.partition.SetValue("")
	qf.sort.SetValue("")
	qf.sortFocus = false
	qf.partition.Focus()
	qf.sort.Blur()
	if schema.Partition != nil {
		qf.partition.Placeholder = schema.Partition.Name
	}
	if schema.Sort != nil {
		qf.sort.Placeholder = schema.Sort.Name
	}
}

// Supported reports whether the schema uses key types the form can encode.
func (qf *QueryForm) Supported() bool {
	return qf.schema.Supported()
}

// ToggleFocus moves focus between the partition and sort inputs. Without a
// sort key there is nowhere to go.
func (qf *QueryForm) ToggleFocus() {
	if qf.schema.Sort == nil {
		return
	}
	qf.sortFocus = !qf.sortFocus
	if qf.sortFocus {
		qf.partition.Blur()
		qf.sort.Focus()
	} else {
		qf.sort.Blur()
		qf.partition.Focus()
	}
}

// Update forwards a key event to the focused input.
func (qf *QueryForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if qf.sortFocus {
		qf.sort, cmd = qf.sort.Update(msg)
	} else {
		qf.partition, cmd = qf.partition.Update(msg)
	}
	return cmd
}

// Values returns the entered key values. A query needs at least the
// partition value; an empty sort value means no sort condition.
func (qf *QueryForm) Values() (partition, sort string) {
	return qf.partition.Value(), qf.sort.Value()
}

// Schema returns the bound key schema.
func (qf *QueryForm) Schema() models.KeySchema {
	return qf.schema
}

// View renders the form as a centered dialog.
func (qf *QueryForm) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(qf.Theme.Info).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(qf.Theme.Warning)

	var lines []string
	if !qf.Supported() {
		lines = append(lines, warnStyle.Render("key schema uses unsupported attribute types"))
		lines = append(lines, "")
		lines = append(lines, "esc: close")
	} else {
		name := "partition key"
		if qf.schema.Partition != nil {
			name = fmt.Sprintf("%s (%s)", qf.schema.Partition.Name, qf.schema.Partition.Type)
		}
		lines = append(lines, labelStyle.Render(name))
		lines = append(lines, qf.partition.View())
		if qf.schema.Sort != nil {
			lines = append(lines, "")
			lines = append(lines, labelStyle.Render(fmt.Sprintf("%s (%s)", qf.schema.Sort.Name, qf.schema.Sort.Type)))
			lines = append(lines, qf.sort.View())
		}
		lines = append(lines, "")
		lines = append(lines, "enter: run query  tab: switch field  esc: cancel")
	}

	panel := Panel{
		Title:   "Query",
		Content: joinLines(lines),
		Width:   qf.Width,
		Height:  len(lines) + 2,
		Focused: true,
		Theme:   qf.Theme,
	}
	return panel.View()
}
