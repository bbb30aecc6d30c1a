// Package sqlite provides the SQLite-backed session and audit stores.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/monchain/arena/internal/battle"
	apperrors "github.com/monchain/arena/internal/platform/errors"
	"github.com/monchain/arena/internal/storage"
	"github.com/monchain/arena/internal/storage/sqlite/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis reverses toMillis for persisted millisecond timestamps.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func fromNullMillis(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	t := fromMillis(value.Int64)
	return &t
}

// Store is a SQLite-backed implementation of storage.SessionStore and
// storage.AuditEventStore.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) a battle store at the provided path and applies
// pending schema migrations. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Concurrent writers are serialized above this layer; a single
	// connection keeps modernc's locking out of the picture.
	sqlDB.SetMaxOpenConns(1)
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// applyMigrations executes embedded migrations at most once per file.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range sqlFiles {
		var count int
		if err := sqlDB.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, file).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if count > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, file, toMillis(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// Put stores the full session record in one transaction. The session row is
// replaced; action rows are append-only and never rewritten.
func (s *Store) Put(ctx context.Context, record battle.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return apperrors.New(apperrors.CodeSessionEmptyID, "session id is required")
	}

	playersJSON, err := json.Marshal(record.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingStatus string
	err = tx.QueryRowContext(ctx, `SELECT status FROM sessions WHERE id = ?`, record.ID).Scan(&existingStatus)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("read session status %s: %w", record.ID, err)
	case !battle.SessionStatus(existingStatus).CanTransition(record.Status):
		return apperrors.WithMetadata(apperrors.CodeSessionInvalidStatus,
			"session status cannot move backward",
			map[string]string{"from": existingStatus, "to": string(record.Status)})
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO sessions
    (id, type, seed, status, players_json, current_turn, winner, flagged, created_at, updated_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status = excluded.status,
    players_json = excluded.players_json,
    current_turn = excluded.current_turn,
    winner = excluded.winner,
    flagged = excluded.flagged,
    updated_at = excluded.updated_at,
    finished_at = excluded.finished_at`,
		record.ID, string(record.Type), record.Seed, string(record.Status),
		playersJSON, record.CurrentTurn, record.Winner, boolToInt(record.Flagged),
		toMillis(record.CreatedAt), toMillis(record.UpdatedAt), toNullMillis(record.FinishedAt))
	if err != nil {
		return fmt.Errorf("put session %s: %w", record.ID, err)
	}

	for _, action := range record.Actions {
		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO actions
    (session_id, turn, actor_uid, move_id, target_uid, damage, hit, timestamp, hash, chain_hash, signature_key_id, signature)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID, action.Turn, action.ActorUID, action.MoveID, action.TargetUID,
			action.Damage, boolToInt(action.Hit), toMillis(action.Timestamp),
			action.Hash, action.ChainHash, action.SignatureKeyID, action.Signature)
		if err != nil {
			return fmt.Errorf("put action %s/%d: %w", record.ID, action.Turn, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put session: %w", err)
	}
	return nil
}

// Get loads a session and its ordered action log.
func (s *Store) Get(ctx context.Context, id string) (battle.Session, error) {
	if err := ctx.Err(); err != nil {
		return battle.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return battle.Session{}, fmt.Errorf("storage is not configured")
	}

	var (
		record      battle.Session
		sessionType string
		status      string
		playersJSON []byte
		flagged     int
		createdAt   int64
		updatedAt   int64
		finishedAt  sql.NullInt64
	)
	err := s.sqlDB.QueryRowContext(ctx, `SELECT id, type, seed, status, players_json, current_turn, winner, flagged, created_at, updated_at, finished_at
FROM sessions WHERE id = ?`, id).Scan(
		&record.ID, &sessionType, &record.Seed, &status, &playersJSON,
		&record.CurrentTurn, &record.Winner, &flagged, &createdAt, &updatedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return battle.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return battle.Session{}, fmt.Errorf("get session %s: %w", id, err)
	}

	if err := json.Unmarshal(playersJSON, &record.Players); err != nil {
		return battle.Session{}, fmt.Errorf("unmarshal players for %s: %w", id, err)
	}
	record.Type = battle.SessionType(sessionType)
	record.Status = battle.SessionStatus(status)
	record.Flagged = flagged != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	record.FinishedAt = fromNullMillis(finishedAt)

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT turn, actor_uid, move_id, target_uid, damage, hit, timestamp, hash, chain_hash, signature_key_id, signature
FROM actions WHERE session_id = ? ORDER BY turn ASC`, id)
	if err != nil {
		return battle.Session{}, fmt.Errorf("list actions for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			action    battle.ActionRecord
			hit       int
			timestamp int64
		)
		if err := rows.Scan(&action.Turn, &action.ActorUID, &action.MoveID, &action.TargetUID,
			&action.Damage, &hit, &timestamp, &action.Hash, &action.ChainHash,
			&action.SignatureKeyID, &action.Signature); err != nil {
			return battle.Session{}, fmt.Errorf("scan action for %s: %w", id, err)
		}
		action.Hit = hit != 0
		action.Timestamp = fromMillis(timestamp)
		record.Actions = append(record.Actions, action)
	}
	if err := rows.Err(); err != nil {
		return battle.Session{}, fmt.Errorf("iterate actions for %s: %w", id, err)
	}
	return record, nil
}

// AppendAuditEvent records an operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.EventName) == "" {
		return fmt.Errorf("event name is required")
	}
	if strings.TrimSpace(evt.Severity) == "" {
		return fmt.Errorf("severity is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	var attributesJSON []byte
	if len(evt.Attributes) > 0 {
		payload, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("marshal audit attributes: %w", err)
		}
		attributesJSON = payload
	}

	_, err := s.sqlDB.ExecContext(ctx, `INSERT INTO audit_events
    (timestamp, event_name, severity, session_id, actor_id, trace_id, span_id, attributes_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		toMillis(evt.Timestamp), evt.EventName, evt.Severity,
		evt.SessionID, evt.ActorID, evt.TraceID, evt.SpanID, attributesJSON)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
