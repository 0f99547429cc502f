package domain

import (
	"slices"
	"strings"
	"sync"
)

// RosterChange reports that the whole roster range may have moved.
// Names is a snapshot taken under the roster lock.
type RosterChange struct {
	From  int
	To    int
	Names []string
}

// RosterListener is called with the roster write lock held.
// It must not call back into the Roster; the snapshot in RosterChange
// carries everything it needs.
type RosterListener func(change RosterChange)

// Roster is the set of participant names known to the client,
// always kept in ascending lexicographic order without duplicates.
// Roster is safe for concurrent use by multiple goroutines.
type Roster struct {
	mu        sync.RWMutex
	names     []string
	listeners []RosterListener
}

func NewRoster() *Roster {
	return &Roster{}
}

// OnChange registers a listener notified after every successful mutation.
func (r *Roster) OnChange(listener RosterListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

// Add inserts name at its sorted position.
// It returns false for an empty name or a name already present.
func (r *Roster) Add(name string) bool {
	if name == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i, found := slices.BinarySearch(r.names, name)
	if found {
		return false
	}
	r.names = slices.Insert(r.names, i, name)
	r.notify()
	return true
}

// Remove deletes the name currently at position index.
// Position and removal are resolved under the same lock.
func (r *Roster) Remove(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.names) {
		return false
	}
	r.names = slices.Delete(r.names, index, index+1)
	r.notify()
	return true
}

// Clear empties the roster. Listeners are only notified when something was removed.
func (r *Roster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.names) == 0 {
		return
	}
	r.names = nil
	r.notify()
}

// IndexOf returns the sorted position of name, or -1 when absent.
func (r *Roster) IndexOf(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, found := slices.BinarySearch(r.names, name)
	if !found {
		return -1
	}
	return i
}

func (r *Roster) Contains(name string) bool {
	return r.IndexOf(name) >= 0
}

func (r *Roster) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// ElementAt returns the name at index, or false when index is out of range.
func (r *Roster) ElementAt(index int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.names) {
		return "", false
	}
	return r.names[index], true
}

// Resolve maps positions to names in one consistent read.
// Out of range positions are skipped.
func (r *Roster) Resolve(indices ...int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(r.names) && !slices.Contains(names, r.names[i]) {
			names = append(names, r.names[i])
		}
	}
	return names
}

// Names returns a sorted copy of the roster.
func (r *Roster) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

func (r *Roster) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return strings.Join(r.names, ", ")
}

// notify must be called with the write lock held.
func (r *Roster) notify() {
	if len(r.listeners) == 0 {
		return
	}
	change := RosterChange{From: 0, To: len(r.names) - 1, Names: slices.Clone(r.names)}
	for _, l := range r.listeners {
		l(change)
	}
}
