// Package memory provides an in-memory session store for tests and
// ephemeral simulation runs.
package memory

import (
	"context"
	"sync"

	"github.com/monchain/arena/internal/battle"
	apperrors "github.com/monchain/arena/internal/platform/errors"
	"github.com/monchain/arena/internal/storage"
)

// Store is an in-memory implementation of storage.SessionStore and
// storage.AuditEventStore. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]battle.Session
	audit    []storage.AuditEvent
}

// New creates an empty store.
func New() *Store {
	return &Store{sessions: make(map[string]battle.Session)}
}

// Put stores a deep copy of the session, replacing any previous version.
// Status writes must move forward through the lifecycle.
func (s *Store) Put(ctx context.Context, record battle.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.ID == "" {
		return apperrors.New(apperrors.CodeSessionEmptyID, "session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[record.ID]; ok && !existing.Status.CanTransition(record.Status) {
		return apperrors.WithMetadata(apperrors.CodeSessionInvalidStatus,
			"session status cannot move backward",
			map[string]string{"from": string(existing.Status), "to": string(record.Status)})
	}
	s.sessions[record.ID] = record.Clone()
	return nil
}

// Get returns a deep copy of the stored session so callers can never alias
// the store's state.
func (s *Store) Get(ctx context.Context, id string) (battle.Session, error) {
	if err := ctx.Err(); err != nil {
		return battle.Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.sessions[id]
	if !ok {
		return battle.Session{}, storage.ErrNotFound
	}
	return record.Clone(), nil
}

// AppendAuditEvent records an audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, evt)
	return nil
}

// AuditEvents returns a snapshot of recorded audit events.
func (s *Store) AuditEvents() []storage.AuditEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]storage.AuditEvent(nil), s.audit...)
}
