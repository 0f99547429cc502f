package domain

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Selection is the set of roster entries highlighted by the user.
// Users pick positions, but the selection keeps names: positions are
// resolved once against the roster, so later roster changes cannot
// silently retarget a selection to another participant.
type Selection struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{names: make(map[string]struct{})}
}

// SelectIndices replaces the selection with the names found at the given
// roster positions and returns them. Names no longer on the roster once the
// selection is replaced are dropped.
func (s *Selection) SelectIndices(roster *Roster, indices ...int) []string {
	names := roster.Resolve(indices...)
	s.SelectNames(names...)
	// A removal landing between Resolve and SelectNames ran its Retain too early.
	s.Retain(roster.Names())
	return lo.Filter(names, func(name string, _ int) bool { return s.Contains(name) })
}

// SelectNames replaces the selection.
func (s *Selection) SelectNames(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = lo.SliceToMap(lo.Compact(names), func(n string) (string, struct{}) {
		return n, struct{}{}
	})
}

// Retain drops every selected name missing from names.
func (s *Selection) Retain(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for n := range s.names {
		if !slices.Contains(names, n) {
			delete(s.names, n)
		}
	}
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.names)
}

func (s *Selection) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

func (s *Selection) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names) == 0
}

// Names returns the selected names in sorted order.
func (s *Selection) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := lo.Keys(s.names)
	slices.Sort(names)
	return names
}
