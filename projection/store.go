// Package projection builds the local message view from received messages.
// Handles ordering and author filtering of snapshots.
// Does not emit events or interact with UI directly.
package projection

import (
	"chat-client/domain"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Predicate selects messages.
type Predicate func(message domain.Message) bool

// MessageStore holds every message received during the session in arrival order.
// Sorted views are derived on demand from the shared Ordering and never stored.
// Identical messages are kept as separate entries.
// MessageStore is safe for concurrent use by multiple goroutines.
type MessageStore struct {
	mu       sync.RWMutex
	ordering *domain.Ordering
	messages []domain.Message
}

func NewMessageStore(ordering *domain.Ordering) *MessageStore {
	return &MessageStore{ordering: ordering}
}

// Append adds message after every stored message. It never rejects.
func (s *MessageStore) Append(message domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Snapshot returns the messages in arrival order.
func (s *MessageStore) Snapshot() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

// Sorted returns every message ordered by the active criteria.
// The sort is stable: ties keep arrival order.
func (s *MessageStore) Sorted() []domain.Message {
	messages := s.Snapshot()
	slices.SortStableFunc(messages, s.ordering.Comparator())
	return messages
}

// Filtered returns Sorted restricted to the messages matching predicate.
func (s *MessageStore) Filtered(predicate Predicate) []domain.Message {
	return lo.Filter(s.Sorted(), func(m domain.Message, _ int) bool {
		return predicate(m)
	})
}

// RemoveWhere deletes every message matching predicate and returns how many went.
func (s *MessageStore) RemoveWhere(predicate Predicate) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.messages)
	s.messages = lo.Reject(s.messages, func(m domain.Message, _ int) bool {
		return predicate(m)
	})
	return before - len(s.messages)
}

func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// SelectedAuthors matches messages whose author is currently selected.
// System messages never match.
func SelectedAuthors(selection *domain.Selection) Predicate {
	return func(m domain.Message) bool {
		return m.HasAuthor() && selection.Contains(m.Author())
	}
}
