// Package battle implements the deterministic turn-based combat core.
//
// Why this package exists:
//   - It owns the session/combatant data model and its lifecycle invariants.
//   - It derives per-turn random generators from the session seed so every
//     action can be recomputed bit-for-bit after the fact.
//   - It resolves accuracy and damage, applies actions, drives autonomous
//     battles, and verifies stored logs against an independent replay.
//
// All combat math is pure: functions take a session snapshot by value and
// return a new snapshot. Nothing in this package touches storage or holds
// shared mutable state; serialization per session is the service layer's job.
package battle
