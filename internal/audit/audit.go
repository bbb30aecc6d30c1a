// Package audit records operational audit events for battle operations.
//
// Audit events are operational telemetry, not gameplay data: the action log
// is the canonical battle record, replayable on its own. Audit rows exist so
// operators can answer "who ran what against which session, and did it work"
// without parsing battle logs.
package audit

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/monchain/arena/internal/storage"
)

// Severity describes the audit severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event names emitted by the battle service.
const (
	EventSessionCreated  = "battle.session.created"
	EventActionProcessed = "battle.action.processed"
	EventAutoResolved    = "battle.auto.resolved"
	EventReplayVerified  = "battle.replay.verified"
	EventSessionFlagged  = "battle.session.flagged"
)

// Emitter records audit events against a store.
type Emitter struct {
	store storage.AuditEventStore
	clock func() time.Time
}

// NewEmitter creates a new audit emitter.
func NewEmitter(store storage.AuditEventStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records an audit event. It is a no-op when the emitter or its store
// is nil, so callers never guard emission sites.
//
// When the context carries an active trace span, the event is stamped with
// the trace and span ids for cross-referencing with distributed traces.
func (e *Emitter) Emit(ctx context.Context, evt storage.AuditEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		clock := e.clock
		if clock == nil {
			clock = time.Now
		}
		evt.Timestamp = clock().UTC()
	}
	if evt.TraceID == "" {
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
			evt.TraceID = sc.TraceID().String()
			evt.SpanID = sc.SpanID().String()
		}
	}
	return e.store.AppendAuditEvent(ctx, evt)
}
