package game

import (
	"context"
	"slices"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/smell-of-curry/servers-info-track/tracker/status"
)

// maxPlayerCounter is implemented by *server.Server.
type maxPlayerCounter interface {
	MaxPlayerCount() int
}

// WorldSource reads snapshots from a dragonfly world. The world state is only
// touched from within the world's own transaction.
type WorldSource struct {
	w      *world.World
	srv    maxPlayerCounter
	roster *Roster
}

// NewWorldSource ...
func NewWorldSource(w *world.World, srv maxPlayerCounter, roster *Roster) *WorldSource {
	return &WorldSource{w: w, srv: srv, roster: roster}
}

// Snapshot implements status.Source.
func (s *WorldSource) Snapshot(ctx context.Context) (status.Snapshot, error) {
	var snap status.Snapshot
	done := s.w.Exec(func(tx *world.Tx) {
		snap = status.Snapshot{
			MapName:       s.w.Name(),
			ActivePlayers: s.countPlayers(slices.Collect(tx.Players())),
			MaxPlayers:    s.srv.MaxPlayerCount(),
		}
	})

	select {
	case <-done:
		return snap, nil
	case <-ctx.Done():
		return status.Snapshot{}, ctx.Err()
	}
}

// identified is implemented by *player.Player.
type identified interface {
	UUID() uuid.UUID
}

// countPlayers counts the entities that are real, connected players. Only
// players accepted through the listener are on the roster.
func (s *WorldSource) countPlayers(entities []world.Entity) int {
	return lo.CountBy(entities, func(e world.Entity) bool {
		p, ok := e.(identified)
		return ok && s.roster.Contains(p.UUID())
	})
}
