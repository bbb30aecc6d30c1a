package battle

import "time"

// DefaultTurnCap bounds autonomous battles so pathological data (healing
// loops, zero-damage stalemates) cannot spin forever.
const DefaultTurnCap = 100

// AutoResult reports the outcome of an autonomous battle run.
type AutoResult struct {
	// Winner is the winning identity, empty on a draw or timeout.
	Winner string
	// Turns is the number of actions resolved during this run.
	Turns int
	// TimedOut is true when the cap was reached before a terminal state.
	TimedOut bool
	// Draw is true when the session finished with no winner.
	Draw bool
}

// AutoResolve drives a session to completion without interactive input,
// alternating actors by turn parity. Used for gym and AI battles.
//
// Move choice is uniform over the active combatant's move list, drawn from a
// dedicated choice generator so the combat draw stream stays identical to
// interactive play. A combatant with no moves falls back to the baseline
// move. The input session is never mutated.
func AutoResolve(s Session, catalog Catalog, turnCap int, now func() time.Time) (Session, AutoResult, error) {
	if turnCap <= 0 {
		turnCap = DefaultTurnCap
	}
	if now == nil {
		now = time.Now
	}

	current := s.Clone()
	result := AutoResult{}

	for result.Turns < turnCap && !current.Status.Terminal() {
		side := current.CurrentTurn % 2
		actor := &current.Players[side]

		active, ok := actor.Active()
		if !ok || active.Fainted() {
			alive := actor.FirstAlive()
			if alive < 0 {
				// Nothing left to switch in; finalize via the usual
				// win-condition evaluation.
				current = evaluateOutcome(current, now())
				break
			}
			actor.ActiveIndex = alive
			active = actor.Team[alive]
		}

		moveID := ""
		if len(active.Moves) > 0 {
			choice := deriveChoiceRNG(current.Seed, current.CurrentTurn)
			moveID = active.Moves[choice.Intn(len(active.Moves))]
		}

		next, _, err := ApplyAction(current, Action{ActorUID: active.UID, MoveID: moveID}, catalog, now())
		if err != nil {
			return current, result, err
		}
		current = next
		result.Turns++
	}

	result.TimedOut = !current.Status.Terminal()
	result.Winner = current.Winner
	result.Draw = current.Status == StatusFinished && current.Winner == ""
	return current, result, nil
}
