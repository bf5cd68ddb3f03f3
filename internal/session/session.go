// Package session holds one user's working state: an engine connection, the
// tables loaded into it, the query editor and the last successful result.
//
// Every exported Session method takes the session lock, so overlapping
// requests from one browser run one after another.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/querydeck/internal/adapter"
)

// ErrNoResult is returned when an action needs a successful query result and
// none exists yet.
var ErrNoResult = errors.New("no query result yet")

// LoadedTable records one uploaded file registered as a table.
type LoadedTable struct {
	FileName   string
	Identifier string
	RowCount   int
	Columns    []string
}

// Session is one user's isolated workspace.
type Session struct {
	ID string

	mu     sync.Mutex
	engine adapter.Adapter
	tables []LoadedTable
	editor Editor
	last   *Result
	logger *slog.Logger
}

// New wraps an already open engine.
func New(id string, engine adapter.Adapter, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		ID:     id,
		engine: engine,
		logger: logger.With(slog.String("session", shortID(id))),
	}
}

// Open creates a session backed by a fresh in-memory DuckDB database.
func Open(ctx context.Context, id string, logger *slog.Logger) (*Session, error) {
	engine, err := adapter.OpenDuckDB(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("open session engine: %w", err)
	}
	return New(id, engine, logger), nil
}

// Close releases the engine. Every table is gone afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = nil
	s.last = nil
	return s.engine.Close()
}

// Tables returns the loaded tables in load order.
func (s *Session) Tables() []LoadedTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LoadedTable, len(s.tables))
	copy(out, s.tables)
	return out
}

// Editor returns a snapshot of the editor.
func (s *Session) Editor() Editor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor
}

// SetSQL records editor text typed by the user.
func (s *Session) SetSQL(sql string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.edit(sql)
}

// LastResult returns the last successful result, or nil.
func (s *Session) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Session) hasFile(name string) bool {
	for _, t := range s.tables {
		if t.FileName == name {
			return true
		}
	}
	return false
}

func (s *Session) hasIdentifier(ident string) bool {
	for _, t := range s.tables {
		if strings.EqualFold(t.Identifier, ident) {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
