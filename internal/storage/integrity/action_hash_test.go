package integrity

import (
	"testing"

	"github.com/monchain/arena/internal/battle"
)

func TestActionHashDeterministic(t *testing.T) {
	rec := battle.ActionRecord{
		Turn:      3,
		ActorUID:  "a1",
		MoveID:    "tackle",
		TargetUID: "b1",
		Damage:    7,
		Hit:       true,
	}

	first, err := ActionHash("s1", rec)
	if err != nil {
		t.Fatalf("action hash: %v", err)
	}
	second, err := ActionHash("s1", rec)
	if err != nil {
		t.Fatalf("action hash: %v", err)
	}
	if first != second {
		t.Fatalf("expected deterministic hash, got %s and %s", first, second)
	}
}

func TestActionHashSensitiveToFields(t *testing.T) {
	base := battle.ActionRecord{Turn: 0, ActorUID: "a1", MoveID: "tackle", TargetUID: "b1", Damage: 7, Hit: true}

	baseline, err := ActionHash("s1", base)
	if err != nil {
		t.Fatalf("action hash: %v", err)
	}

	altered := base
	altered.Damage = 8
	changed, err := ActionHash("s1", altered)
	if err != nil {
		t.Fatalf("action hash: %v", err)
	}
	if baseline == changed {
		t.Fatal("hash must change when damage changes")
	}

	other, err := ActionHash("s2", base)
	if err != nil {
		t.Fatalf("action hash: %v", err)
	}
	if baseline == other {
		t.Fatal("hash must change with the session id")
	}
}

func TestActionHashRequiresSessionID(t *testing.T) {
	if _, err := ActionHash("  ", battle.ActionRecord{}); err == nil {
		t.Fatal("expected error for empty session id")
	}
}

func TestChainHashLinksPredecessor(t *testing.T) {
	first, err := ChainHash("hash-a", "")
	if err != nil {
		t.Fatalf("chain hash: %v", err)
	}
	second, err := ChainHash("hash-a", first)
	if err != nil {
		t.Fatalf("chain hash: %v", err)
	}
	if first == second {
		t.Fatal("chained hash must differ from its predecessor")
	}

	if _, err := ChainHash("", "prev"); err == nil {
		t.Fatal("expected error when action hash is missing")
	}
}
