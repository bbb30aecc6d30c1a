package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/monchain/arena/internal/battle"
	apperrors "github.com/monchain/arena/internal/platform/errors"
	"github.com/monchain/arena/internal/storage"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	s := battle.Session{
		ID:     "s1",
		Type:   battle.SessionTypePvP,
		Seed:   "seed-1",
		Status: battle.StatusCreated,
	}
	s.Players[0] = battle.Participant{Identity: "wallet-a", Team: []battle.Combatant{{UID: "a1", CurrentHP: 10, MaxHP: 10}}}
	s.Players[1] = battle.Participant{Identity: "wallet-b", Team: []battle.Combatant{{UID: "b1", CurrentHP: 10, MaxHP: 10}}}

	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Seed != "seed-1" || got.Players[0].Identity != "wallet-a" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := New()
	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	s := battle.Session{ID: "s1", Seed: "seed"}
	s.Players[0].Team = []battle.Combatant{{UID: "a1", CurrentHP: 30, MaxHP: 30}}
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	first, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	first.Players[0].Team[0].CurrentHP = 0

	second, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if second.Players[0].Team[0].CurrentHP != 30 {
		t.Fatal("stored state aliased a returned copy")
	}
}

func TestPutRequiresSessionID(t *testing.T) {
	store := New()
	err := store.Put(context.Background(), battle.Session{Seed: "seed"})
	if !errors.Is(err, apperrors.New(apperrors.CodeSessionEmptyID, "")) {
		t.Fatalf("err = %v, want empty session id code", err)
	}
}

func TestPutRejectsBackwardStatus(t *testing.T) {
	store := New()
	ctx := context.Background()

	s := battle.Session{ID: "s1", Seed: "seed", Status: battle.StatusFinished}
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	s.Status = battle.StatusActive
	err := store.Put(ctx, s)
	if !errors.Is(err, apperrors.New(apperrors.CodeSessionInvalidStatus, "")) {
		t.Fatalf("err = %v, want invalid status code", err)
	}

	// Rewriting the same status is allowed.
	s.Status = battle.StatusFinished
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("same-status put: %v", err)
	}
}

func TestAppendAuditEvent(t *testing.T) {
	store := New()
	if err := store.AppendAuditEvent(context.Background(), storage.AuditEvent{EventName: "battle.action.processed"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	events := store.AuditEvents()
	if len(events) != 1 || events[0].EventName != "battle.action.processed" {
		t.Fatalf("events = %+v", events)
	}
}
