package models

// Selection is an index-based single selection over a dynamic-length list,
// with a scrollbar position kept in sync with the selected index. The index
// always refers to the filtered view the list currently displays.
type Selection struct {
	index     int // -1 means nothing selected
	scrollPos int
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{index: -1}
}

// Selected returns the selected index, or false when nothing is selected.
func (s *Selection) Selected() (int, bool) {
	if s.index < 0 {
		return 0, false
	}
	return s.index, true
}

// ScrollPos returns the scrollbar position.
func (s *Selection) ScrollPos() int {
	return s.scrollPos
}

// Next moves the selection down one row. With nothing selected it selects
// the first row.
func (s *Selection) Next(length int) {
	if length == 0 {
		s.SelectNone()
		return
	}
	if s.index < 0 {
		s.set(0, length)
		return
	}
	s.set(s.index+1, length)
}

// Previous moves the selection up one row. With nothing selected it selects
// the last row.
func (s *Selection) Previous(length int) {
	if length == 0 {
		s.SelectNone()
		return
	}
	if s.index < 0 {
		s.set(length-1, length)
		return
	}
	s.set(s.index-1, length)
}

// First selects the first row. It also recovers from a stuck unselected
// state after a filter change: an empty selection over a non-empty view
// becomes index 0.
func (s *Selection) First(length int) {
	if length == 0 {
		s.SelectNone()
		return
	}
	s.set(0, length)
}

// Last selects the last row.
func (s *Selection) Last(length int) {
	if length == 0 {
		s.SelectNone()
		return
	}
	s.set(length-1, length)
}

// ScrollUp moves the selection up by n rows.
func (s *Selection) ScrollUp(n, length int) {
	if length == 0 {
		s.SelectNone()
		return
	}
	if s.index < 0 {
		s.set(0, length)
		return
	}
	s.set(s.index-n, length)
}

// ScrollDown moves the selection down by n rows.
func (s *Selection) ScrollDown(n, length int) {
	if length == 0 {
		s.SelectNone()
		return
	}
	if s.index < 0 {
		s.set(0, length)
		return
	}
	s.set(s.index+n, length)
}

// SelectNone clears the selection.
func (s *Selection) SelectNone() {
	s.index = -1
	s.scrollPos = 0
}

// Clamp forces the selection back into [0, length) after the underlying
// view changed length. An empty view clears the selection.
func (s *Selection) Clamp(length int) {
	if length == 0 {
		s.SelectNone()
		return
	}
	if s.index < 0 {
		return
	}
	s.set(s.index, length)
}

func (s *Selection) set(index, length int) {
	if index < 0 {
		index = 0
	}
	if index >= length {
		index = length - 1
	}
	s.index = index
	s.scrollPos = index
}
