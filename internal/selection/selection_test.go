package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmcdole/pixdeck/internal/domain"
)

func TestSelectDeselect(t *testing.T) {
	s := New()

	assert.True(t, s.Select("a"))
	assert.False(t, s.Select("a"), "already selected")
	assert.True(t, s.Select("b"))
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, []string{"a", "b"}, s.IDs())

	assert.True(t, s.Deselect("a"))
	assert.False(t, s.Deselect("a"))
	assert.False(t, s.Contains("a"))
	assert.Equal(t, []string{"b"}, s.IDs())
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
		id      string
	}{
		{name: "unselected id", initial: []string{"x"}, id: "a"},
		{name: "selected id", initial: []string{"a", "x"}, id: "a"},
		{name: "empty set", initial: nil, id: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			for _, id := range tt.initial {
				s.Select(id)
			}
			before := s.Contains(tt.id)

			first := s.Toggle(tt.id)
			assert.Equal(t, !before, first)
			second := s.Toggle(tt.id)
			assert.Equal(t, before, second)

			assert.Equal(t, before, s.Contains(tt.id))
			assert.Equal(t, len(tt.initial), s.Count())
		})
	}
}

func TestClear(t *testing.T) {
	s := New()
	s.Select("a")
	s.Select("b")

	s.Clear()

	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.IDs())
	assert.True(t, s.Select("a"), "usable after clear")
}

func TestIDsIsSnapshot(t *testing.T) {
	s := New()
	s.Select("a")
	ids := s.IDs()
	ids[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.IDs())
}

func TestSelectedItemsFollowsItemsOrder(t *testing.T) {
	items := []domain.ImageRef{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	s := New()
	s.Select("d")
	s.Select("b")
	s.Select("zz") // not in items, e.g. from an earlier query

	got := SelectedItems(items, s)
	assert.Equal(t, []domain.ImageRef{{ID: "b"}, {ID: "d"}}, got)
	assert.Equal(t, []bool{false, true, false, true}, Membership(items, s))
	assert.Equal(t, 3, s.Count())
}
