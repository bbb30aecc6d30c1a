package battle

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// DeriveRNG derives the deterministic generator for one turn of a session.
//
// The seeding algorithm is part of the wire contract: the key is the session
// seed, a colon, and the decimal turn number; the key is hashed with FNV-1a
// (64-bit) and the result seeds math/rand. Any implementation that reproduces
// this derivation can audit a session log independently, so neither the key
// layout nor the hash may change without versioning the contract.
//
// Identical (seed, turn) inputs always yield a generator producing the
// identical draw sequence. Generators must not be reused across turns.
func DeriveRNG(seed string, turn int) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.Itoa(turn)))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// deriveChoiceRNG derives the generator used for autonomous move selection.
//
// Move choice draws from its own lineage so the combat draw stream (one
// accuracy draw, then at most one variance draw) is identical for
// interactive and auto-resolved sessions and replay never has to skip draws.
func deriveChoiceRNG(seed string, turn int) *rand.Rand {
	return DeriveRNG(seed+"#choice", turn)
}
