// Package status ties the host's lifecycle and player events to writes of the
// server's row in the shared server list table.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/df-mc/atomic"
	"github.com/smell-of-curry/servers-info-track/tracker/gate"
	"github.com/smell-of-curry/servers-info-track/tracker/internal"
	"github.com/smell-of-curry/servers-info-track/tracker/task"
)

// Store writes the row of this server.
type Store interface {
	EnsureTableExists(ctx context.Context) error
	UpdateServer(ctx context.Context, activePlayers, maxPlayers int, mapName string) error
	SetStatus(ctx context.Context, status int, resetPlayers bool) error
}

// Source reads the current game state. Implementations must read it from the
// host's main context, not from the calling goroutine.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Snapshot is the game state written by an update.
type Snapshot struct {
	MapName       string `json:"map_name"`
	ActivePlayers int    `json:"active_players"`
	MaxPlayers    int    `json:"max_players"`
}

// Report is the last state written to the store.
type Report struct {
	ServerID int       `json:"server_id"`
	Name     string    `json:"name"`
	IP       string    `json:"ip"`
	Online   bool      `json:"online"`
	Updated  time.Time `json:"last_update"`
	Snapshot
}

// Options ...
type Options struct {
	ServerID   int
	ServerName string
	ServerIP   string

	// UpdateInterval is the minimum time between two player triggered updates.
	UpdateInterval time.Duration
	// UnloadTimeout bounds how long Unload waits for in-flight writes.
	UnloadTimeout time.Duration

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Controller tracks whether the server is online and keeps its row current.
type Controller struct {
	log  *slog.Logger
	opts Options

	store  Store
	source Source
	sup    *task.Supervisor
	gate   *gate.Gate

	closing atomic.Bool
	report  atomic.Value[Report]
}

// NewController ...
func NewController(log *slog.Logger, opts Options, store Store, source Source, sup *task.Supervisor) *Controller {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Controller{
		log:    log,
		opts:   opts,
		store:  store,
		source: source,
		sup:    sup,
		gate:   gate.New(opts.UpdateInterval),
	}
}

// Load prepares the table, marks the server online and writes the current state.
// The writes happen in the background; a failing step does not stop later steps.
func (c *Controller) Load() {
	c.log.Info("server tracker loaded", "id", c.opts.ServerID, "name", c.opts.ServerName)
	c.gate.Mark(c.opts.Clock())

	c.sup.Go("load", func(ctx context.Context) error {
		var errs []error
		if err := c.store.EnsureTableExists(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := c.setStatus(ctx, internal.StatusOnline, false); err != nil {
			errs = append(errs, err)
		}
		if err := c.update(ctx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})
}

// PlayerConnected is called once a player has fully joined.
func (c *Controller) PlayerConnected() bool {
	return c.scheduleUpdate("connect")
}

// PlayerDisconnected is called when a player leaves.
func (c *Controller) PlayerDisconnected() bool {
	return c.scheduleUpdate("disconnect")
}

// Shutdown marks the server offline without waiting for the write. Player
// triggered updates are ignored from here on.
func (c *Controller) Shutdown(reason string) {
	if strings.TrimSpace(reason) == "" {
		reason = "unknown"
	}
	c.closing.Store(true)
	c.log.Info("server shutting down", "reason", reason)

	c.sup.Go("shutdown", func(ctx context.Context) error {
		return c.setStatus(ctx, internal.StatusOffline, true)
	})
}

// Unload waits for in-flight writes, then marks the server offline and blocks
// until that write has finished. No work is accepted afterwards.
func (c *Controller) Unload() {
	c.closing.Store(true)
	c.log.Warn("server tracker unloading, marking server offline")

	c.sup.Close()
	if !c.sup.Wait(c.opts.UnloadTimeout) {
		c.log.Warn("in-flight writes did not finish before unload", "timeout", c.opts.UnloadTimeout)
	}

	_ = c.sup.Run(context.Background(), "unload", func(ctx context.Context) error {
		return c.setStatus(ctx, internal.StatusOffline, true)
	})
}

// Report returns the last state written by this controller.
func (c *Controller) Report() Report {
	r := c.report.Load()
	r.ServerID = c.opts.ServerID
	r.Name = c.opts.ServerName
	r.IP = c.opts.ServerIP
	return r
}

// scheduleUpdate starts an update unless one was started less than the update
// interval ago. Skipped triggers are dropped.
func (c *Controller) scheduleUpdate(trigger string) bool {
	if c.closing.Load() {
		return false
	}
	if !c.gate.Allow(c.opts.Clock()) {
		c.log.Debug("update skipped", "trigger", trigger, "interval", c.gate.Interval())
		return false
	}
	return c.sup.Go("update", c.update)
}

// update reads a snapshot and writes it.
func (c *Controller) update(ctx context.Context) error {
	snap, err := c.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if strings.TrimSpace(snap.MapName) == "" {
		snap.MapName = internal.UnknownMapName
	}
	if err = c.store.UpdateServer(ctx, snap.ActivePlayers, snap.MaxPlayers, snap.MapName); err != nil {
		return err
	}
	c.report.Store(Report{Online: true, Updated: c.opts.Clock(), Snapshot: snap})
	return nil
}

// setStatus ...
func (c *Controller) setStatus(ctx context.Context, status int, resetPlayers bool) error {
	if err := c.store.SetStatus(ctx, status, resetPlayers); err != nil {
		return err
	}
	r := c.report.Load()
	r.Online = status == internal.StatusOnline
	r.Updated = c.opts.Clock()
	if resetPlayers {
		r.ActivePlayers = 0
	}
	c.report.Store(r)
	return nil
}
