// Package selection tracks the images chosen by the user across pages.
// A Set has its own lifecycle: it survives query changes and is only
// cleared explicitly or after an album is composed from it.
package selection

import (
	"sync"

	"github.com/mmcdole/pixdeck/internal/domain"
)

// Set is an insertion-ordered set of image ids
type Set struct {
	mu      sync.RWMutex
	order   []string
	members map[string]struct{}
}

// New creates an empty selection
func New() *Set {
	return &Set{members: make(map[string]struct{})}
}

// Select adds id. Returns false if it was already selected.
func (s *Set) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Deselect removes id. Returns false if it was not selected.
func (s *Set) Deselect(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(id)
}

// Toggle flips membership of id and returns the new membership
func (s *Set) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remove(id) {
		return false
	}
	s.members[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// remove deletes id. Caller holds mu.
func (s *Set) remove(id string) bool {
	if _, ok := s.members[id]; !ok {
		return false
	}
	delete(s.members, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear empties the selection
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.members = make(map[string]struct{})
}

func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[id]
	return ok
}

func (s *Set) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// IDs returns a snapshot of the selected ids in insertion order
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// SelectedItems returns items that are selected, in items order.
// Selected ids missing from items are ignored.
func SelectedItems(items []domain.ImageRef, s *Set) []domain.ImageRef {
	var out []domain.ImageRef
	for _, it := range items {
		if s.Contains(it.ID) {
			out = append(out, it)
		}
	}
	return out
}

// Membership reports, per item, whether it is selected
func Membership(items []domain.ImageRef, s *Set) []bool {
	out := make([]bool, len(items))
	for i, it := range items {
		out[i] = s.Contains(it.ID)
	}
	return out
}
