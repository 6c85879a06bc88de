// Package rootstate holds the process-wide default root path consulted by
// the formatter when a template's root reference is unspecified at call
// time. The state is an explicit object rather than an ambient global so
// the override semantics stay testable; a shared default instance backs
// the package-level convenience functions.
package rootstate

import "sync"

// State is a mutable cell holding an optional current root path. A race
// between Set and a concurrent format call that does not pass an explicit
// override resolves last-writer-wins; no stronger ordering is provided.
type State struct {
	mu   sync.Mutex
	path string
	set  bool
}

// NewState creates an empty State with no root bound
func NewState() *State {
	return &State{}
}

// Set binds the default root path
func (s *State) Set(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.set = true
}

// Clear removes the default root binding
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = ""
	s.set = false
}

// Get returns the bound root path and whether one is bound
func (s *State) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path, s.set
}

var defaultState = NewState()

// Default returns the process-wide shared State
func Default() *State {
	return defaultState
}

// SetDefaultRoot binds the process-wide default root path
func SetDefaultRoot(path string) {
	defaultState.Set(path)
}

// ClearDefaultRoot removes the process-wide default root binding
func ClearDefaultRoot() {
	defaultState.Clear()
}

// DefaultRoot returns the process-wide default root path, if bound
func DefaultRoot() (string, bool) {
	return defaultState.Get()
}
