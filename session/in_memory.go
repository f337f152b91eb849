package session

import (
	"sync"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
)

// InMemoryStore is a volatile Store keeping sessions in a process-local map.
// It is safe for concurrent access and suited to tests and single-process
// deployments; the Store interface allows a durable swap without scheduler
// changes. Every value crossing the boundary is cloned so external mutation
// never reaches the stored copy.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.State

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*core.State),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get implements Store. Unknown ids yield a fresh empty state that is not
// persisted until the first Put.
func (s *InMemoryStore) Get(sessionID string) (*core.State, error) {
	s.mu.RLock()
	st, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return core.NewState(sessionID), nil
	}
	return st.Clone(), nil
}

// Put implements Store with an atomic whole-state replace.
func (s *InMemoryStore) Put(sessionID string, st *core.State) error {
	snapshot := st.Clone()
	s.mu.Lock()
	s.sessions[sessionID] = snapshot
	s.mu.Unlock()
	return nil
}

// Lock implements Store via lazily created per-key mutexes.
func (s *InMemoryStore) Lock(sessionID string) func() {
	s.lockMu.Lock()
	m, ok := s.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[sessionID] = m
	}
	s.lockMu.Unlock()

	m.Lock()
	return m.Unlock
}

// Len returns the number of persisted sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
