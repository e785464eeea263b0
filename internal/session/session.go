// Package session tracks each user's in-progress theme request.
package session

import (
	"sync"

	"github.com/knoguchi/themefather/internal/theme"
)

// State is a user's request. A stored state always has a Platform;
// Description is nil until the user sends their first text message.
type State struct {
	Platform    theme.Platform
	Description *string
}

// Complete reports whether both a platform and a description are present.
func (s State) Complete() bool {
	return s.Platform != "" && s.Description != nil
}

// Ticket identifies the entry a completed request was taken from.
type Ticket uint64

type entry struct {
	state  State
	ticket Ticket
}

// Store is the per-user state table. All methods are safe for concurrent
// use and return without doing I/O while holding the lock.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	next    Ticket
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[int64]*entry)}
}

// Reset removes the user's entry, returning the user to idle.
func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// SelectPlatform starts a new request for the user, discarding any prior one.
func (s *Store) SelectPlatform(userID int64, p theme.Platform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.entries[userID] = &entry{state: State{Platform: p}, ticket: s.next}
}

// Describe records the description for a user who has selected a platform
// and returns the completed state. It returns false when the user is idle
// or a description was already recorded.
func (s *Store) Describe(userID int64, text string) (State, Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok || e.state.Description != nil {
		return State{}, 0, false
	}

	desc := text
	e.state.Description = &desc
	return e.state, e.ticket, true
}

// Finish clears the entry a request was taken from. An entry replaced by a
// newer platform selection in the meantime is kept.
func (s *Store) Finish(userID int64, ticket Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[userID]; ok && e.ticket == ticket {
		delete(s.entries, userID)
	}
}

// Get returns a copy of the user's state.
func (s *Store) Get(userID int64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// Len returns the number of users with an entry.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
