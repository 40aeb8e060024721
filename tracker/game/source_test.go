package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

type fixedMax int

func (m fixedMax) MaxPlayerCount() int { return int(m) }

// fakeEntity is a world entity carrying a player UUID.
type fakeEntity struct {
	world.Entity
	id uuid.UUID
}

func (e fakeEntity) UUID() uuid.UUID { return e.id }

// anonymousEntity has no UUID, like a dropped item or a mob.
type anonymousEntity struct {
	world.Entity
}

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.Config{}.New()
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestSnapshotReadsWorld(t *testing.T) {
	w := newTestWorld(t)
	src := NewWorldSource(w, fixedMax(20), NewRoster())

	snap, err := src.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.MapName != w.Name() || snap.MapName == "" {
		t.Fatalf("MapName = %q, want %q", snap.MapName, w.Name())
	}
	if snap.MaxPlayers != 20 || snap.ActivePlayers != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSnapshotAfterWorldClosed(t *testing.T) {
	w := world.Config{}.New()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	src := NewWorldSource(w, fixedMax(20), NewRoster())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := src.Snapshot(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Snapshot on closed world = %v, want deadline exceeded", err)
	}
}

func TestCountPlayersOnlyCountsRoster(t *testing.T) {
	roster := NewRoster()
	joined, other := uuid.New(), uuid.New()
	roster.Add(joined)
	src := NewWorldSource(nil, fixedMax(0), roster)

	entities := []world.Entity{
		fakeEntity{id: joined},
		fakeEntity{id: other},
		anonymousEntity{},
	}
	if n := src.countPlayers(entities); n != 1 {
		t.Fatalf("countPlayers = %d, want 1", n)
	}

	roster.Remove(joined)
	if n := src.countPlayers(entities); n != 0 {
		t.Fatalf("countPlayers after removal = %d, want 0", n)
	}
}
