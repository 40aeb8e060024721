package game

import (
	"sync"

	"github.com/google/uuid"
)

// Roster holds the players that joined through the network listener. Entities
// spawned by the server itself, such as NPCs and bots, never appear in it.
type Roster struct {
	players sync.Map
}

// NewRoster ...
func NewRoster() *Roster {
	return &Roster{}
}

// Add ...
func (r *Roster) Add(id uuid.UUID) {
	r.players.Store(id, struct{}{})
}

// Remove ...
func (r *Roster) Remove(id uuid.UUID) {
	r.players.Delete(id)
}

// Contains ...
func (r *Roster) Contains(id uuid.UUID) bool {
	_, ok := r.players.Load(id)
	return ok
}

// Len ...
func (r *Roster) Len() int {
	var n int
	r.players.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
