package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionStartsEmpty(t *testing.T) {
	s := NewSelection()

	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Equal(t, 0, s.ScrollPos())
}

func TestSelectionNext(t *testing.T) {
	s := NewSelection()

	s.Next(3) // from empty: first row
	i, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 0, i)

	s.Next(3)
	i, _ = s.Selected()
	assert.Equal(t, 1, i)

	s.Next(3)
	s.Next(3) // pinned at the last row
	i, _ = s.Selected()
	assert.Equal(t, 2, i)
}

func TestSelectionPreviousFromEmptySelectsLast(t *testing.T) {
	s := NewSelection()

	s.Previous(3)
	i, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 2, i)

	s.Previous(3)
	s.Previous(3)
	s.Previous(3) // pinned at the first row
	i, _ = s.Selected()
	assert.Equal(t, 0, i)
}

func TestSelectionFirstLast(t *testing.T) {
	s := NewSelection()

	s.Last(10)
	i, _ := s.Selected()
	assert.Equal(t, 9, i)
	assert.Equal(t, 9, s.ScrollPos())

	s.First(10)
	i, _ = s.Selected()
	assert.Equal(t, 0, i)
	assert.Equal(t, 0, s.ScrollPos())
}

func TestSelectionScrollSteps(t *testing.T) {
	s := NewSelection()
	s.First(20)

	s.ScrollDown(5, 20)
	i, _ := s.Selected()
	assert.Equal(t, 5, i)

	s.ScrollDown(100, 20) // clamps to the last row
	i, _ = s.Selected()
	assert.Equal(t, 19, i)

	s.ScrollUp(5, 20)
	i, _ = s.Selected()
	assert.Equal(t, 14, i)

	s.ScrollUp(100, 20) // clamps to the first row
	i, _ = s.Selected()
	assert.Equal(t, 0, i)
}

func TestSelectionEmptyListClears(t *testing.T) {
	s := NewSelection()
	s.First(5)

	s.Next(0)
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestSelectionClamp(t *testing.T) {
	s := NewSelection()
	s.Last(10)

	s.Clamp(4) // view shrank under the selection
	i, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 3, i)

	s.Clamp(0)
	_, ok = s.Selected()
	assert.False(t, ok)

	// An already-empty selection stays empty.
	s.Clamp(7)
	_, ok = s.Selected()
	assert.False(t, ok)
}
