package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSessionNotFound is returned by Get for an unknown identifier. The engine
// treats it as "start a new session" rather than a failure.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore holds live sessions keyed by identifier.
//
// Lock returns a mutex dedicated to the given identifier. Callers hold it for
// the duration of a turn so that two in-flight turns against the same session
// can never interleave transcript writes.
type SessionStore interface {
	Create(s *Session) error
	Get(id string) (*Session, error)
	Put(s *Session) error
	Delete(id string)
	Lock(id string) *sync.Mutex
}

// MemoryStore is the in-process SessionStore. Nothing survives the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *MemoryStore) Create(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Put(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	// the turn lock for id is kept: a late turn against a deleted
	// identifier must still serialize with the turn that deleted it
}

func (m *MemoryStore) Lock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}
