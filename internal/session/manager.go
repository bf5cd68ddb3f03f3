package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long an unused session is kept.
const DefaultIdleTimeout = 30 * time.Minute

// Opener creates the session for a new id.
type Opener func(ctx context.Context, id string) (*Session, error)

// ManagerConfig holds configuration for a Manager.
type ManagerConfig struct {
	// IdleTimeout evicts sessions unused for this long. Zero uses
	// DefaultIdleTimeout.
	IdleTimeout time.Duration

	// Open creates sessions. Nil opens in-memory DuckDB sessions.
	Open Opener

	Logger *slog.Logger
}

// Manager owns every live session, keyed by id.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*managedSession
	open        Opener
	idleTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

type managedSession struct {
	session  *Session
	lastSeen time.Time
	holds    int
}

// NewManager creates a Manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	open := cfg.Open
	if open == nil {
		open = func(ctx context.Context, id string) (*Session, error) {
			return Open(ctx, id, logger)
		}
	}
	return &Manager{
		sessions:    make(map[string]*managedSession),
		open:        open,
		idleTimeout: idle,
		now:         time.Now,
		logger:      logger,
	}
}

// Get returns the live session with id and marks it used.
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	ms.lastSeen = m.now()
	return ms.session, true
}

// Hold keeps the session with id from idle eviction until release is
// called. A browser tab holds its session for as long as its update stream
// is open. The idle clock restarts on release.
func (m *Manager) Hold(id string) (release func(), ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return func() {}, false
	}
	ms.holds++
	ms.lastSeen = m.now()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			ms.holds--
			ms.lastSeen = m.now()
		})
	}, true
}

// Create opens a session under a new random id.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	s, err := m.open(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	m.mu.Lock()
	m.sessions[id] = &managedSession{session: s, lastSeen: m.now()}
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Debug("session created", slog.String("session", shortID(id)), slog.Int("live", count))
	return s, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle closes sessions unused since before now minus the idle timeout
// and returns how many were closed. Held sessions are never evicted.
func (m *Manager) EvictIdle() int {
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, ms := range m.sessions {
		if ms.holds == 0 && ms.lastSeen.Before(cutoff) {
			idle = append(idle, ms.session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		if err := s.Close(); err != nil {
			m.logger.Warn("failed to close idle session", slog.String("session", shortID(s.ID)), slog.String("error", err.Error()))
		}
	}
	if len(idle) > 0 {
		m.logger.Info("evicted idle sessions", slog.Int("count", len(idle)))
	}
	return len(idle)
}

// Run evicts idle sessions periodically until ctx is done, then closes
// every remaining session.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.idleTimeout / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return m.Close()
		case <-ticker.C:
			m.EvictIdle()
		}
	}
}

// Close closes every session.
func (m *Manager) Close() error {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, ms := range m.sessions {
		all = append(all, ms.session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range all {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session %s: %w", shortID(s.ID), err))
		}
	}
	return errors.Join(errs...)
}
