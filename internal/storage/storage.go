// Package storage defines the persistence contracts consumed by the battle
// service. Implementations must provide atomic whole-record replace semantics
// for sessions; the service layer serializes writers per session id.
package storage

import (
	"context"
	"time"

	"github.com/monchain/arena/internal/battle"
	apperrors "github.com/monchain/arena/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such session"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// SessionStore owns battle session records, including their action logs.
type SessionStore interface {
	// Put stores the full session record, replacing any previous version.
	// The action log is append-only: rows already persisted are never
	// rewritten.
	Put(ctx context.Context, s battle.Session) error
	// Get loads a session by id, returning ErrNotFound when absent.
	Get(ctx context.Context, id string) (battle.Session, error)
}

// AuditEvent captures one operational audit row emitted by the service.
type AuditEvent struct {
	Timestamp  time.Time
	EventName  string
	Severity   string
	SessionID  string
	ActorID    string
	TraceID    string
	SpanID     string
	Attributes map[string]any
}

// AuditEventStore records operational audit events.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
}
