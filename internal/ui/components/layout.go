package components

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// listWindow returns the [start, end) slice of a list that keeps the
// selected row inside a window of visible rows.
func listWindow(total, visible, selected int) (int, int) {
	if visible <= 0 || total <= 0 {
		return 0, 0
	}
	if total <= visible {
		return 0, total
	}

	start := selected - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > total {
		start = total - visible
	}
	return start, start + visible
}

// truncate shortens s to the given display width, cell-width aware.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// scrollbar renders a one-column vertical scrollbar for a list of total
// rows, with the thumb at position, spanning height cells.
func scrollbar(total, position, height int) []string {
	cells := make([]string, height)
	if height <= 0 {
		return cells
	}
	thumb := 0
	if total > 1 {
		thumb = position * (height - 1) / (total - 1)
	}
	for i := range cells {
		if i == thumb && total > 0 {
			cells[i] = "█"
		} else {
			cells[i] = "│"
		}
	}
	return cells
}

// joinLines joins rendered lines into panel content.
func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// formatNumber prints a JSON number without a needless exponent or
// trailing zeros.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// padLine pads or truncates a line to an exact display width.
func padLine(s string, width int) string {
	s = truncate(s, width)
	gap := width - runewidth.StringWidth(s)
	if gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}
