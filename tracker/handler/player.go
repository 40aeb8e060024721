package handler

import (
	"github.com/df-mc/dragonfly/server/player"
	"github.com/google/uuid"
	"github.com/smell-of-curry/servers-info-track/tracker/game"
)

// Tracker is notified about players leaving the server.
type Tracker interface {
	PlayerDisconnected() bool
}

// PlayerHandler ...
type PlayerHandler struct {
	roster  *game.Roster
	tracker Tracker

	player.NopHandler
}

// NewPlayerHandler ...
func NewPlayerHandler(roster *game.Roster, tracker Tracker) *PlayerHandler {
	return &PlayerHandler{roster: roster, tracker: tracker}
}

// HandleQuit ...
func (h *PlayerHandler) HandleQuit(p *player.Player) {
	h.quit(p.UUID())
}

// quit drops the player from the roster before the update reads it.
func (h *PlayerHandler) quit(id uuid.UUID) {
	h.roster.Remove(id)
	h.tracker.PlayerDisconnected()
}
