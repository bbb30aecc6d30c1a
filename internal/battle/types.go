package battle

import (
	"strings"
	"time"
)

// SessionType classifies how a battle session is driven.
type SessionType string

const (
	SessionTypeWild SessionType = "wild"
	SessionTypePvP  SessionType = "pvp"
	SessionTypeGym  SessionType = "gym"
)

// IsValid reports whether the session type is a known value.
func (t SessionType) IsValid() bool {
	switch t {
	case SessionTypeWild, SessionTypePvP, SessionTypeGym:
		return true
	}
	return false
}

// SessionStatus tracks the session lifecycle. Transitions only move forward:
// created -> active -> finished, or -> abandoned.
type SessionStatus string

const (
	StatusCreated   SessionStatus = "created"
	StatusActive    SessionStatus = "active"
	StatusFinished  SessionStatus = "finished"
	StatusAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether no further actions may mutate the session.
func (s SessionStatus) Terminal() bool {
	return s == StatusFinished || s == StatusAbandoned
}

// CanTransition reports whether a session may move from s to next. Statuses
// only move forward; writing the same status again is always allowed.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusCreated:
		return next == StatusActive || next.Terminal()
	case StatusActive:
		return next.Terminal()
	}
	return false
}

// CombatantStatus tracks whether a combatant can still fight.
type CombatantStatus string

const (
	CombatantActive  CombatantStatus = "active"
	CombatantFainted CombatantStatus = "fainted"
)

// Combatant is a single creature on a participant's team.
//
// Invariant: 0 <= CurrentHP <= MaxHP, and Status is fainted exactly when
// CurrentHP is zero.
type Combatant struct {
	UID       string          `json:"uid"`
	SpeciesID string          `json:"species_id"`
	Level     int             `json:"level"`
	CurrentHP int             `json:"current_hp"`
	MaxHP     int             `json:"max_hp"`
	Attack    int             `json:"attack"`
	Defense   int             `json:"defense"`
	Speed     int             `json:"speed"`
	Moves     []string        `json:"moves"`
	Status    CombatantStatus `json:"status"`
}

// Fainted reports whether the combatant is out of the fight.
func (c Combatant) Fainted() bool {
	return c.CurrentHP <= 0
}

// Clone returns a deep copy of the combatant.
func (c Combatant) Clone() Combatant {
	out := c
	out.Moves = append([]string(nil), c.Moves...)
	return out
}

// Participant is one side of a battle: a player identity and their team.
type Participant struct {
	Identity    string      `json:"identity"`
	Team        []Combatant `json:"team"`
	ActiveIndex int         `json:"active_index"`
}

// Clone returns a deep copy of the participant.
func (p Participant) Clone() Participant {
	out := p
	out.Team = make([]Combatant, len(p.Team))
	for i, c := range p.Team {
		out.Team[i] = c.Clone()
	}
	return out
}

// Active returns the participant's currently active combatant.
// The second return is false when the team is empty or the index is invalid.
func (p Participant) Active() (Combatant, bool) {
	if p.ActiveIndex < 0 || p.ActiveIndex >= len(p.Team) {
		return Combatant{}, false
	}
	return p.Team[p.ActiveIndex], true
}

// FirstAlive returns the index of the first combatant in team order with
// CurrentHP > 0, or -1 when the whole team has fainted.
func (p Participant) FirstAlive() int {
	for i, c := range p.Team {
		if !c.Fainted() {
			return i
		}
	}
	return -1
}

// Defeated reports whether every combatant on the team has fainted.
func (p Participant) Defeated() bool {
	return p.FirstAlive() < 0
}

// ActionRecord is one resolved turn in the append-only session log.
//
// Hash, ChainHash, SignatureKeyID and Signature are assigned by the service
// layer on append; the combat core leaves them empty.
type ActionRecord struct {
	Turn           int       `json:"turn"`
	ActorUID       string    `json:"actor_uid"`
	MoveID         string    `json:"move_id"`
	TargetUID      string    `json:"target_uid"`
	Damage         int       `json:"damage"`
	Hit            bool      `json:"hit"`
	Timestamp      time.Time `json:"timestamp"`
	Hash           string    `json:"hash,omitempty"`
	ChainHash      string    `json:"chain_hash,omitempty"`
	SignatureKeyID string    `json:"signature_key_id,omitempty"`
	Signature      string    `json:"signature,omitempty"`
}

// Session is a full battle record: rosters, seed, and the action log.
//
// ID and Seed never change after creation. CurrentTurn is monotonic and
// Actions is append-only, ordered by turn with no gaps.
type Session struct {
	ID          string         `json:"id"`
	Type        SessionType    `json:"type"`
	Seed        string         `json:"seed"`
	Status      SessionStatus  `json:"status"`
	Players     [2]Participant `json:"players"`
	CurrentTurn int            `json:"current_turn"`
	Actions     []ActionRecord `json:"actions"`
	Winner      string         `json:"winner,omitempty"`
	Flagged     bool           `json:"flagged,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
}

// Clone returns a deep copy of the session. Combat functions operate on
// clones so live state and replay state can never alias.
func (s Session) Clone() Session {
	out := s
	for i := range s.Players {
		out.Players[i] = s.Players[i].Clone()
	}
	out.Actions = append([]ActionRecord(nil), s.Actions...)
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	return out
}

// FindCombatant locates a combatant by uid across both rosters, returning
// the owning player index and team index.
func (s Session) FindCombatant(uid string) (player, slot int, ok bool) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return 0, 0, false
	}
	for pi := range s.Players {
		for ci, c := range s.Players[pi].Team {
			if c.UID == uid {
				return pi, ci, true
			}
		}
	}
	return 0, 0, false
}

// Action is a submitted command: one combatant using one move.
// TargetUID is optional; when empty the opposing active combatant is hit.
type Action struct {
	ActorUID  string `json:"actor_uid"`
	MoveID    string `json:"move_id"`
	TargetUID string `json:"target_uid,omitempty"`
}
