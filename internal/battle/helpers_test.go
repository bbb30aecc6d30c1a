package battle

import (
	"fmt"
	"time"
)

var testClock = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testCombatant(uid string, hp int) Combatant {
	return Combatant{
		UID:       uid,
		SpeciesID: "species-" + uid,
		Level:     10,
		CurrentHP: hp,
		MaxHP:     hp,
		Attack:    15,
		Defense:   10,
		Speed:     10,
		Moves:     []string{"tackle"},
		Status:    CombatantActive,
	}
}

// testSession builds a created session with one team per side; team sizes
// and HP values come from the provided slices.
func testSession(seed string, firstHP, secondHP []int) Session {
	s := Session{
		ID:        "session-1",
		Type:      SessionTypePvP,
		Seed:      seed,
		Status:    StatusCreated,
		CreatedAt: testClock,
		UpdatedAt: testClock,
	}
	for i, hp := range firstHP {
		s.Players[0].Team = append(s.Players[0].Team, testCombatant(fmt.Sprintf("a%d", i+1), hp))
	}
	for i, hp := range secondHP {
		s.Players[1].Team = append(s.Players[1].Team, testCombatant(fmt.Sprintf("b%d", i+1), hp))
	}
	s.Players[0].Identity = "wallet-a"
	s.Players[1].Identity = "wallet-b"
	return s
}
