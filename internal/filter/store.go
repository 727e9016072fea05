// Package filter holds the age and gender filter applied to already-fetched people.
package filter

import (
	"sync"

	"github.com/rshade/peoplegrid/internal/person"
)

// State is a snapshot of the filter. Zero fields carry no constraint.
type State struct {
	MinAge int           `json:"minAge" yaml:"min_age"`
	MaxAge int           `json:"maxAge" yaml:"max_age"`
	Gender person.Gender `json:"gender" yaml:"gender"`
}

// IsZero reports whether the state constrains nothing.
func (s State) IsZero() bool {
	return s == State{}
}

// Patch is the argument to Store.Set. Zero fields are left unchanged.
type Patch struct {
	MinAge int
	MaxAge int
	Gender person.Gender
}

// Store is the filter shared by the views of one application. Create it once and pass
// it to whatever needs it.
type Store struct {
	mu       sync.RWMutex
	state    State
	revision uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set overwrites the fields p provides. Zero-valued fields in p are ignored, so
// Set(Patch{MinAge: 0}) changes nothing.
func (s *Store) Set(p Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	if p.MinAge != 0 {
		next.MinAge = p.MinAge
	}
	if p.MaxAge != 0 {
		next.MaxAge = p.MaxAge
	}
	if p.Gender.IsSet() {
		next.Gender = p.Gender
	}
	s.commitLocked(next)
}

// Reset clears every field.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(State{})
}

// Filters returns the current state.
func (s *Store) Filters() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Revision increases every time the state changes. Views compare it to decide
// whether to re-derive.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) commitLocked(next State) {
	if next == s.state {
		return
	}
	s.state = next
	s.revision++
}
