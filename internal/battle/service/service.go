// Package service orchestrates battle operations against persistent
// sessions: interactive actions, autonomous resolution, and replay
// verification. It owns the per-session serialization contract and the
// tamper-evident sealing of action records.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/monchain/arena/internal/audit"
	"github.com/monchain/arena/internal/battle"
	apperrors "github.com/monchain/arena/internal/platform/errors"
	"github.com/monchain/arena/internal/storage"
	"github.com/monchain/arena/internal/storage/integrity"
)

// Service exposes the battle core's entry points over a session store.
type Service struct {
	store   storage.SessionStore
	catalog battle.Catalog
	keyring *integrity.Keyring
	audit   *audit.Emitter
	locks   *sessionLocks
	clock   func() time.Time
	turnCap int
}

// Option configures a Service.
type Option func(*Service)

// WithKeyring enables HMAC signing of sealed action records.
func WithKeyring(keyring *integrity.Keyring) Option {
	return func(s *Service) { s.keyring = keyring }
}

// WithAudit attaches an audit emitter. Emission failures are swallowed:
// auditing must never fail a battle operation.
func WithAudit(emitter *audit.Emitter) Option {
	return func(s *Service) { s.audit = emitter }
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithTurnCap overrides the autonomous battle turn cap.
func WithTurnCap(turnCap int) Option {
	return func(s *Service) { s.turnCap = turnCap }
}

// New creates a battle service over the given store and move catalog.
func New(store storage.SessionStore, catalog battle.Catalog, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: catalog,
		locks:   newSessionLocks(),
		clock:   time.Now,
		turnCap: battle.DefaultTurnCap,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewSession describes a session to create.
type NewSession struct {
	Type    battle.SessionType
	Seed    string // optional; a random seed is generated when empty
	Players [2]battle.Participant
}

// CreateSession validates and persists a new battle session.
func (s *Service) CreateSession(ctx context.Context, spec NewSession) (battle.Session, error) {
	if !spec.Type.IsValid() {
		return battle.Session{}, apperrors.WithMetadata(apperrors.CodeSessionInvalidType,
			"invalid session type", map[string]string{"type": string(spec.Type)})
	}
	for i := range spec.Players {
		if len(spec.Players[i].Team) == 0 {
			return battle.Session{}, apperrors.New(apperrors.CodeBattleEmptyRoster, "participant has no combatants")
		}
	}

	seed := spec.Seed
	if seed == "" {
		var err error
		seed, err = randomSeed()
		if err != nil {
			return battle.Session{}, err
		}
	}

	now := s.clock().UTC()
	session := battle.Session{
		ID:        uuid.NewString(),
		Type:      spec.Type,
		Seed:      seed,
		Status:    battle.StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range spec.Players {
		session.Players[i] = spec.Players[i].Clone()
		for j := range session.Players[i].Team {
			combatant := &session.Players[i].Team[j]
			if combatant.CurrentHP <= 0 {
				combatant.CurrentHP = 0
				combatant.Status = battle.CombatantFainted
			} else {
				combatant.Status = battle.CombatantActive
			}
			if combatant.CurrentHP > combatant.MaxHP {
				combatant.CurrentHP = combatant.MaxHP
			}
		}
	}

	if err := s.store.Put(ctx, session); err != nil {
		return battle.Session{}, err
	}
	s.emit(ctx, audit.EventSessionCreated, audit.SeverityInfo, session.ID, map[string]any{
		"type": string(session.Type),
	})
	return session, nil
}

// GetSession loads a session by id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (battle.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// ProcessResult reports one processed interactive action.
type ProcessResult struct {
	// Record is the sealed action record appended to the log.
	Record battle.ActionRecord
	// FallbackMove signals that the submitted move id was unknown and the
	// baseline move was substituted.
	FallbackMove bool
	BattleOver   bool
	Draw         bool
	Winner       string
}

// ProcessAction applies one submitted action to a session.
//
// The whole read-modify-write cycle runs under the session's lock, which is
// the serialization guarantee that keeps the per-turn RNG draws single-use.
func (s *Service) ProcessAction(ctx context.Context, sessionID string, action battle.Action) (ProcessResult, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return ProcessResult{}, err
	}

	next, result, err := battle.ApplyAction(session, action, s.catalog, s.clock())
	if err != nil {
		return ProcessResult{}, err
	}

	if err := s.sealActions(sessionID, next.Actions, len(session.Actions)); err != nil {
		return ProcessResult{}, err
	}
	if err := s.store.Put(ctx, next); err != nil {
		return ProcessResult{}, err
	}

	sealed := next.Actions[len(next.Actions)-1]
	severity := audit.SeverityInfo
	if result.FallbackMove {
		severity = audit.SeverityWarn
	}
	s.emit(ctx, audit.EventActionProcessed, severity, sessionID, map[string]any{
		"turn":          sealed.Turn,
		"hit":           sealed.Hit,
		"damage":        sealed.Damage,
		"fallback_move": result.FallbackMove,
		"battle_over":   result.BattleOver,
	})

	return ProcessResult{
		Record:       sealed,
		FallbackMove: result.FallbackMove,
		BattleOver:   result.BattleOver,
		Draw:         result.Draw,
		Winner:       result.Winner,
	}, nil
}

// AutoOutcome reports an autonomous battle run.
type AutoOutcome struct {
	Winner   string
	Turns    int
	TimedOut bool
	Draw     bool
}

// AutoResolve drives a session to completion without interactive input.
//
// The session lock is held for the entire loop so no interactive action can
// interleave mid-run.
func (s *Service) AutoResolve(ctx context.Context, sessionID string) (AutoOutcome, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return AutoOutcome{}, err
	}

	next, result, err := battle.AutoResolve(session, s.catalog, s.turnCap, s.clock)
	if err != nil {
		return AutoOutcome{}, err
	}

	if err := s.sealActions(sessionID, next.Actions, len(session.Actions)); err != nil {
		return AutoOutcome{}, err
	}
	if err := s.store.Put(ctx, next); err != nil {
		return AutoOutcome{}, err
	}

	s.emit(ctx, audit.EventAutoResolved, audit.SeverityInfo, sessionID, map[string]any{
		"turns":     result.Turns,
		"timed_out": result.TimedOut,
		"winner":    result.Winner,
	})

	return AutoOutcome{
		Winner:   result.Winner,
		Turns:    result.Turns,
		TimedOut: result.TimedOut,
		Draw:     result.Draw,
	}, nil
}

// ReplayOutcome is a replay report plus signature verification results.
type ReplayOutcome struct {
	battle.Report
	// SignaturesChecked is true when a keyring was configured and stored
	// signatures were verified against the recomputed chain.
	SignaturesChecked bool
	// SignatureFailures lists turns whose stored signature or chain hash
	// did not verify.
	SignatureFailures []int
}

// Replay re-runs a session's action log from its seed and reports whether
// the recomputed outcomes match what was recorded. Read-only.
func (s *Service) Replay(ctx context.Context, sessionID string) (ReplayOutcome, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return ReplayOutcome{}, err
	}

	outcome := ReplayOutcome{Report: battle.Verify(session, s.catalog)}
	if s.keyring != nil {
		outcome.SignaturesChecked = true
		outcome.SignatureFailures = s.verifySignatures(sessionID, session.Actions)
		if len(outcome.SignatureFailures) > 0 {
			outcome.AllMatch = false
		}
	}

	severity := audit.SeverityInfo
	if !outcome.AllMatch {
		severity = audit.SeverityWarn
	}
	s.emit(ctx, audit.EventReplayVerified, severity, sessionID, map[string]any{
		"all_match":          outcome.AllMatch,
		"turns":              len(outcome.PerTurn),
		"signatures_checked": outcome.SignaturesChecked,
	})
	return outcome, nil
}

// FlagSession marks a session as suspect after an integrity failure.
func (s *Service) FlagSession(ctx context.Context, sessionID string) error {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Flagged {
		return nil
	}
	session.Flagged = true
	session.UpdatedAt = s.clock().UTC()
	if err := s.store.Put(ctx, session); err != nil {
		return err
	}
	s.emit(ctx, audit.EventSessionFlagged, audit.SeverityWarn, sessionID, nil)
	return nil
}

// sealActions computes hash, chain hash, and (when a keyring is configured)
// signature for every record from index from onward, chaining from the last
// previously sealed record.
func (s *Service) sealActions(sessionID string, actions []battle.ActionRecord, from int) error {
	prevChain := ""
	if from > 0 {
		prevChain = actions[from-1].ChainHash
	}
	for i := from; i < len(actions); i++ {
		hash, err := integrity.ActionHash(sessionID, actions[i])
		if err != nil {
			return apperrors.Wrap(apperrors.CodeIntegrityKeyring, "hash action record", err)
		}
		chain, err := integrity.ChainHash(hash, prevChain)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeIntegrityKeyring, "chain action record", err)
		}
		actions[i].Hash = hash
		actions[i].ChainHash = chain
		if s.keyring != nil {
			sig, keyID, err := s.keyring.SignChainHash(sessionID, chain)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeIntegritySignature, "sign action record", err)
			}
			actions[i].Signature = sig
			actions[i].SignatureKeyID = keyID
		}
		prevChain = chain
	}
	return nil
}

// verifySignatures recomputes the hash chain and checks stored signatures,
// returning the turns that fail.
func (s *Service) verifySignatures(sessionID string, actions []battle.ActionRecord) []int {
	var failures []int
	prevChain := ""
	for _, rec := range actions {
		hash, err := integrity.ActionHash(sessionID, rec)
		if err != nil {
			failures = append(failures, rec.Turn)
			continue
		}
		chain, err := integrity.ChainHash(hash, prevChain)
		if err != nil {
			failures = append(failures, rec.Turn)
			continue
		}
		if chain != rec.ChainHash ||
			s.keyring.VerifyChainHash(sessionID, chain, rec.Signature, rec.SignatureKeyID) != nil {
			failures = append(failures, rec.Turn)
		}
		prevChain = chain
	}
	return failures
}

func (s *Service) emit(ctx context.Context, name string, severity audit.Severity, sessionID string, attributes map[string]any) {
	// Best effort: auditing never fails the operation.
	_ = s.audit.Emit(ctx, storage.AuditEvent{
		EventName:  name,
		Severity:   string(severity),
		SessionID:  sessionID,
		Attributes: attributes,
	})
}

func randomSeed() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate seed: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
