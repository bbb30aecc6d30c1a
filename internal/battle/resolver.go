package battle

import (
	"math"
	"math/rand"
)

// AccuracyHit rolls the accuracy check for a move.
//
// It takes exactly one uniform draw in [0,100) from rng; the move hits when
// the draw does not exceed the move's accuracy. Accuracy 0 means unspecified
// and is treated as 100, so such moves always hit.
func AccuracyHit(move Move, rng *rand.Rand) bool {
	accuracy := move.Accuracy
	if accuracy <= 0 {
		accuracy = 100
	}
	draw := rng.Float64() * 100
	return draw <= float64(accuracy)
}

// Damage computes the damage dealt by attacker to defender with move.
//
// It takes exactly one uniform draw from rng for the variance factor in
// [0.85, 1.00). Callers must roll AccuracyHit first and only call Damage on
// a hit; the fixed draw order is what makes replay verification exact.
//
// The result is always at least 1.
func Damage(attacker, defender Combatant, move Move, rng *rand.Rand) int {
	defense := defender.Defense
	if defense < 1 {
		defense = 1
	}
	// The level term is real division; only the whole quotient is floored,
	// then the flat +2 is added. Flooring earlier loses damage at levels
	// that are not multiples of 5 and breaks replay against other
	// implementations of the same formula.
	level := 2*float64(attacker.Level)/5 + 2
	base := math.Floor(level*float64(attacker.Attack)*float64(move.Power)/(float64(defense)*50)) + 2

	variance := 0.85 + rng.Float64()*0.15
	result := int(math.Floor(base * variance))
	if result < 1 {
		result = 1
	}
	return result
}
