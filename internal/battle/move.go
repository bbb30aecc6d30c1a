package battle

import "strings"

// Move describes the static combat data for a single move.
type Move struct {
	ID            string `json:"id"`
	Power         int    `json:"power"`
	Accuracy      int    `json:"accuracy"`
	ElementalType string `json:"elemental_type"`
}

// Catalog is the read-only move lookup consumed by the combat core.
// Implementations must be safe for concurrent use.
type Catalog interface {
	Lookup(moveID string) (Move, bool)
}

// FallbackMove is substituted when a submitted move id is unknown to the
// catalog or a combatant has no moves at all. The substitution is surfaced
// on the turn result rather than treated as an error.
var FallbackMove = Move{
	ID:            "",
	Power:         40,
	Accuracy:      100,
	ElementalType: "normal",
}

// resolveMove looks up a move, falling back to FallbackMove for unknown ids.
// The second return reports whether the fallback was used.
func resolveMove(catalog Catalog, moveID string) (Move, bool) {
	if catalog != nil {
		if move, ok := catalog.Lookup(moveID); ok {
			return move, false
		}
	}
	fallback := FallbackMove
	fallback.ID = moveID
	return fallback, true
}

// StaticCatalog is an in-memory move catalog.
type StaticCatalog struct {
	moves map[string]Move
}

// NewStaticCatalog builds a catalog from the provided moves.
func NewStaticCatalog(moves []Move) *StaticCatalog {
	index := make(map[string]Move, len(moves))
	for _, m := range moves {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			continue
		}
		m.ID = id
		index[id] = m
	}
	return &StaticCatalog{moves: index}
}

// Lookup implements Catalog.
func (c *StaticCatalog) Lookup(moveID string) (Move, bool) {
	if c == nil {
		return Move{}, false
	}
	move, ok := c.moves[strings.TrimSpace(moveID)]
	return move, ok
}

// BuiltinCatalog returns the default move set shipped with the resolver.
// Accuracy 0 on a move means unspecified and resolves as 100 at roll time.
func BuiltinCatalog() *StaticCatalog {
	return NewStaticCatalog([]Move{
		{ID: "tackle", Power: 40, Accuracy: 100, ElementalType: "normal"},
		{ID: "scratch", Power: 40, Accuracy: 100, ElementalType: "normal"},
		{ID: "pound", Power: 40, Accuracy: 100, ElementalType: "normal"},
		{ID: "quick-attack", Power: 40, Accuracy: 100, ElementalType: "normal"},
		{ID: "ember", Power: 40, Accuracy: 100, ElementalType: "fire"},
		{ID: "flamethrower", Power: 90, Accuracy: 100, ElementalType: "fire"},
		{ID: "water-gun", Power: 40, Accuracy: 100, ElementalType: "water"},
		{ID: "bubble-beam", Power: 65, Accuracy: 100, ElementalType: "water"},
		{ID: "vine-whip", Power: 45, Accuracy: 100, ElementalType: "grass"},
		{ID: "razor-leaf", Power: 55, Accuracy: 95, ElementalType: "grass"},
		{ID: "thunder-shock", Power: 40, Accuracy: 100, ElementalType: "electric"},
		{ID: "thunderbolt", Power: 90, Accuracy: 100, ElementalType: "electric"},
		{ID: "hydro-pump", Power: 110, Accuracy: 80, ElementalType: "water"},
		{ID: "fire-blast", Power: 110, Accuracy: 85, ElementalType: "fire"},
		{ID: "hyper-beam", Power: 150, Accuracy: 90, ElementalType: "normal"},
	})
}
