package tracker

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/getsentry/sentry-go"
	"github.com/smell-of-curry/servers-info-track/tracker/api"
	"github.com/smell-of-curry/servers-info-track/tracker/command"
	"github.com/smell-of-curry/servers-info-track/tracker/database"
	"github.com/smell-of-curry/servers-info-track/tracker/game"
	"github.com/smell-of-curry/servers-info-track/tracker/handler"
	"github.com/smell-of-curry/servers-info-track/tracker/status"
	"github.com/smell-of-curry/servers-info-track/tracker/task"
)

// Tracker runs a dragonfly server and keeps its entry in the shared server
// list table up to date.
type Tracker struct {
	log  *slog.Logger
	conf Config

	srv    *server.Server
	db     *database.Service
	sup    *task.Supervisor
	status *status.Controller
	roster *game.Roster
	api    *api.Server

	c         chan struct{}
	closeOnce sync.Once
}

// NewTracker creates a new instance of Tracker.
func NewTracker(log *slog.Logger, conf Config) (*Tracker, error) {
	if conf.Tracker.SentryDsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:        conf.Tracker.SentryDsn,
			ServerName: conf.ServerName,
		})
		if err != nil {
			log.Warn("failed to initialise sentry", "error", err)
		}
	}

	log.Info("Starting Server...")

	c, err := conf.UserConfig.Config(log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.Open(conf.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.Info("using server list database", "host", conf.Database.Host, "port", conf.Database.Port, "table", conf.Database.TableName)

	t := &Tracker{
		log:    log,
		conf:   conf,
		db:     database.NewService(log.With("component", "database"), conf.Database, conf.Identity(), sqlDB),
		sup:    task.NewSupervisor(log.With("component", "task"), conf.Tracker.TaskTimeout.D()),
		roster: game.NewRoster(),
		c:      make(chan struct{}),
	}
	t.srv = c.New()

	t.status = status.NewController(log.With("component", "status"), status.Options{
		ServerID:       conf.ServerID,
		ServerName:     conf.ServerName,
		ServerIP:       conf.ServerIP,
		UpdateInterval: conf.Tracker.UpdateInterval.D(),
		UnloadTimeout:  conf.Tracker.UnloadTimeout.D(),
	}, t.db, game.NewWorldSource(t.srv.World(), t.srv, t.roster), t.sup)

	cmd.Register(command.NewServerInfo(t.status))

	if addr := conf.Service.StatusAddress; addr != "" {
		t.api = api.NewServer(log.With("component", "api"), addr, conf.Service.StatusKey, t.status, t.db)
	}
	return t, nil
}

// Start begins the server's main loop, accepting connections and handling players.
// It blocks until the server is closed.
func (t *Tracker) Start() {
	t.srv.Listen()
	t.status.Load()
	if t.api != nil {
		t.api.Start()
	}
	go t.watchSignals()

	for p := range t.srv.Accept() {
		t.accept(p)
	}

	t.Close()
}

// accept handles a new player joining the server.
func (t *Tracker) accept(p *player.Player) {
	t.roster.Add(p.UUID())
	p.Handle(handler.NewPlayerHandler(t.roster, t.status))
	t.status.PlayerConnected()
}

// watchSignals marks the server offline and closes it once the process is
// asked to stop.
func (t *Tracker) watchSignals() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-t.c:
		return
	case s := <-sig:
		t.status.Shutdown(s.String())
		if err := t.srv.Close(); err != nil {
			t.log.Error("failed to close server", "error", err)
		}
	}
}

// Close marks the server offline, waiting for the write, and releases all
// resources.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		close(t.c)

		t.log.Debug("Unloading Status Controller...")
		t.status.Unload()

		if t.api != nil {
			t.log.Debug("Stopping Status API...")
			if err := t.api.Close(); err != nil {
				t.log.Error("failed to stop status api", "error", err)
			}
		}

		t.log.Debug("Closing Database...")
		if err := t.db.Close(); err != nil {
			t.log.Error("failed to close database", "error", err)
		}
		sentry.Flush(2 * time.Second)
	})
}
