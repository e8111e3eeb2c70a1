package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/examhall/backend/internal/store"
)

// Manager owns at most one live Session per session id within the process.
// Re-entering a known id returns the live machine; entering an unknown id
// constructs one and runs recovery against the key store. Nothing stops a
// second process from hosting the same id — the one-instance expectation is
// device-local.
type Manager struct {
	kv         store.KeyStore
	aggregator *ResultAggregator
	log        zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager(kv store.KeyStore, aggregator *ResultAggregator, log zerolog.Logger) *Manager {
	return &Manager{
		kv:         kv,
		aggregator: aggregator,
		log:        log,
		sessions:   make(map[string]*Session),
	}
}

// Enter returns the live session for id, constructing and starting one if
// none exists. The duration string is only parsed for new machines; a live
// session keeps the duration it was entered with.
func (m *Manager) Enter(ctx context.Context, id, examName, duration string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	durationSeconds, err := ParseDuration(duration)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	// Re-check: a concurrent Enter may have won.
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	s := NewSession(id, examName, durationSeconds, m.kv, m.aggregator, m.log)
	m.sessions[id] = s
	m.mu.Unlock()

	if err := s.Start(ctx); err != nil {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, err
	}
	return s, nil
}

// Get returns the live session for id, if any.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Abandon stops the session's countdown and drops it from the manager.
// Persisted keys stay put, so a later Enter recovers the attempt.
func (m *Manager) Abandon(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		s.Abandon()
	}
	return ok
}

// Shutdown cancels every live countdown. Called on process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Abandon()
	}
}
