package battle

// TurnComparison compares one logged action against its recomputation.
type TurnComparison struct {
	Turn int `json:"turn"`
	// RecomputedDamage and RecomputedHit are what the replay derived from
	// the seed and the log's own evolving roster state.
	RecomputedDamage int  `json:"recomputed_damage"`
	RecomputedHit    bool `json:"recomputed_hit"`
	// LoggedDamage and LoggedHit are what the stored record claims.
	LoggedDamage int  `json:"logged_damage"`
	LoggedHit    bool `json:"logged_hit"`
	Match        bool `json:"match"`
}

// Report is the result of replaying a session's action log.
//
// AllMatch false signals a corrupted log, a non-deterministic bug in the
// live path, or tampering. It is a diagnostic, never an operational failure.
type Report struct {
	SessionID string           `json:"session_id"`
	AllMatch  bool             `json:"all_match"`
	PerTurn   []TurnComparison `json:"per_turn"`
}

// Verify replays a session's full action log from the initial roster state
// and reports, turn by turn, whether recomputed outcomes match the log.
//
// The replay reconstructs every combatant at full HP from the stored
// session and evolves its own private state; it never touches objects used
// by live play. Each record's generator is re-derived from (seed,
// record.turn) so the recomputation is independent of the live path.
func Verify(s Session, catalog Catalog) Report {
	report := Report{SessionID: s.ID, AllMatch: true}
	if len(s.Actions) == 0 {
		return report
	}

	roster := make(map[string]*Combatant)
	for pi := range s.Players {
		for _, c := range s.Players[pi].Team {
			fresh := c.Clone()
			fresh.CurrentHP = fresh.MaxHP
			fresh.Status = CombatantActive
			roster[fresh.UID] = &fresh
		}
	}

	report.PerTurn = make([]TurnComparison, 0, len(s.Actions))
	for _, rec := range s.Actions {
		comparison := TurnComparison{
			Turn:         rec.Turn,
			LoggedDamage: rec.Damage,
			LoggedHit:    rec.Hit,
		}

		attacker, okAttacker := roster[rec.ActorUID]
		defender, okDefender := roster[rec.TargetUID]
		if !okAttacker || !okDefender {
			// A log referencing unknown combatants can never match.
			report.PerTurn = append(report.PerTurn, comparison)
			report.AllMatch = false
			continue
		}

		rng := DeriveRNG(s.Seed, rec.Turn)
		move, _ := resolveMove(catalog, rec.MoveID)

		hit := AccuracyHit(move, rng)
		damage := 0
		if hit {
			damage = Damage(*attacker, *defender, move, rng)
			if damage > defender.CurrentHP {
				damage = defender.CurrentHP
			}
			defender.CurrentHP -= damage
			if defender.CurrentHP <= 0 {
				defender.CurrentHP = 0
				defender.Status = CombatantFainted
			}
		}

		comparison.RecomputedDamage = damage
		comparison.RecomputedHit = hit
		comparison.Match = hit == rec.Hit && damage == rec.Damage
		if !comparison.Match {
			report.AllMatch = false
		}
		report.PerTurn = append(report.PerTurn, comparison)
	}
	return report
}
