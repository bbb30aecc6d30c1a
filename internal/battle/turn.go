package battle

import (
	"time"

	apperrors "github.com/monchain/arena/internal/platform/errors"
)

// Domain errors surfaced by the turn processor. Callers can branch on these
// with errors.Is; the codes map to transport-level statuses.
var (
	// ErrBattleFinished rejects actions against a terminal session.
	ErrBattleFinished = apperrors.New(apperrors.CodeBattleFinished, "battle already finished")
	// ErrActorNotFound indicates the acting uid exists on neither roster.
	ErrActorNotFound = apperrors.New(apperrors.CodeBattleActorNotFound, "actor not found in battle")
	// ErrTargetNotFound indicates the target uid cannot be resolved.
	ErrTargetNotFound = apperrors.New(apperrors.CodeBattleTargetNotFound, "target not found in battle")
	// ErrInvalidAction rejects an action with no acting combatant uid.
	ErrInvalidAction = apperrors.New(apperrors.CodeBattleInvalidAction, "action actor uid is required")
	// ErrEmptySeed rejects a session without a seed; per-turn generators
	// cannot be derived without one.
	ErrEmptySeed = apperrors.New(apperrors.CodeSessionEmptySeed, "session seed is required")
)

// TurnResult reports the outcome of one applied action.
type TurnResult struct {
	// Record is the action record appended to the session log.
	Record ActionRecord
	// Move is the resolved move used for the roll.
	Move Move
	// FallbackMove is true when the submitted move id was unknown and the
	// baseline move was substituted. Surfaced as a signal, never an error.
	FallbackMove bool
	// TargetFainted is true when this action reduced the target to zero HP.
	TargetFainted bool
	// BattleOver is true when the action ended the session.
	BattleOver bool
	// Draw is true when both sides fainted in the same evaluation.
	Draw bool
	// Winner is the winning participant's identity, empty while in
	// progress or on a draw.
	Winner string
}

// ApplyAction applies one submitted action to a session snapshot and returns
// the updated snapshot. The input session is never mutated.
//
// The per-turn generator is derived from (seed, currentTurn); the action
// takes one accuracy draw and, on a hit, one variance draw, in that order.
// The recorded damage equals the amount actually subtracted from the target,
// so a replayed log balances against HP exactly.
func ApplyAction(s Session, action Action, catalog Catalog, now time.Time) (Session, TurnResult, error) {
	if s.Status.Terminal() {
		return s, TurnResult{}, ErrBattleFinished
	}
	if s.Seed == "" {
		return s, TurnResult{}, ErrEmptySeed
	}
	if action.ActorUID == "" {
		return s, TurnResult{}, ErrInvalidAction
	}

	attackerPlayer, attackerSlot, ok := s.FindCombatant(action.ActorUID)
	if !ok {
		return s, TurnResult{}, ErrActorNotFound
	}

	targetPlayer, targetSlot := 0, 0
	if action.TargetUID != "" {
		targetPlayer, targetSlot, ok = s.FindCombatant(action.TargetUID)
		if !ok {
			return s, TurnResult{}, ErrTargetNotFound
		}
	} else {
		targetPlayer = 1 - attackerPlayer
		opposing := s.Players[targetPlayer]
		if _, ok := opposing.Active(); !ok {
			return s, TurnResult{}, ErrTargetNotFound
		}
		targetSlot = opposing.ActiveIndex
	}

	next := s.Clone()
	rng := DeriveRNG(next.Seed, next.CurrentTurn)
	move, fallback := resolveMove(catalog, action.MoveID)

	attacker := next.Players[attackerPlayer].Team[attackerSlot]
	target := &next.Players[targetPlayer].Team[targetSlot]

	hit := AccuracyHit(move, rng)
	damage := 0
	fainted := false
	if hit {
		damage = Damage(attacker, *target, move, rng)
		if damage > target.CurrentHP {
			damage = target.CurrentHP
		}
		target.CurrentHP -= damage
		if target.CurrentHP <= 0 {
			target.CurrentHP = 0
			target.Status = CombatantFainted
			fainted = true
			if alive := next.Players[targetPlayer].FirstAlive(); alive >= 0 {
				next.Players[targetPlayer].ActiveIndex = alive
			}
		}
	}

	record := ActionRecord{
		Turn:      next.CurrentTurn,
		ActorUID:  attacker.UID,
		MoveID:    action.MoveID,
		TargetUID: target.UID,
		Damage:    damage,
		Hit:       hit,
		Timestamp: now.UTC(),
	}
	next.Actions = append(next.Actions, record)
	next.CurrentTurn++

	if next.Status == StatusCreated {
		next.Status = StatusActive
	}
	next.UpdatedAt = now.UTC()
	next = evaluateOutcome(next, now)

	return next, TurnResult{
		Record:        record,
		Move:          move,
		FallbackMove:  fallback,
		TargetFainted: fainted,
		BattleOver:    next.Status == StatusFinished,
		Draw:          next.Status == StatusFinished && next.Winner == "",
		Winner:        next.Winner,
	}, nil
}

// evaluateOutcome checks the win condition and finalizes the session when a
// side (or both) has no combatants left standing.
func evaluateOutcome(s Session, now time.Time) Session {
	if s.Status.Terminal() {
		return s
	}
	firstDown := s.Players[0].Defeated()
	secondDown := s.Players[1].Defeated()
	if !firstDown && !secondDown {
		return s
	}

	switch {
	case firstDown && secondDown:
		s.Winner = "" // draw
	case firstDown:
		s.Winner = s.Players[1].Identity
	default:
		s.Winner = s.Players[0].Identity
	}
	s.Status = StatusFinished
	finished := now.UTC()
	s.FinishedAt = &finished
	s.UpdatedAt = finished
	return s
}
