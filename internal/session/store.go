package session

import (
	"sync"

	"hypolab/domain/core"
)

// Store keeps live sessions keyed by id. Sessions are memory-only;
// nothing is shared across them.
type Store struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{sessions: make(map[core.SessionID]*Session)}
}

// Create registers and returns a new Idle session
func (st *Store) Create() *Session {
	s := New()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID()] = s
	return s
}

// Get returns the session with the given id
func (st *Store) Get(id core.SessionID) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session
func (st *Store) Delete(id core.SessionID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
