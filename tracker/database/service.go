package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/smell-of-curry/servers-info-track/tracker/internal"
)

// Service performs all SQL I/O for the row of one server.
// Every operation takes its own connection from the pool, executes a single
// statement and releases the connection again.
type Service struct {
	log *slog.Logger
	db  *sql.DB

	identity Identity
	table    string
	q        queries
}

// Open opens a MySQL handle for the config. The handle keeps no idle
// connections, so a connection only lives for the duration of one operation.
func Open(conf Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", conf.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(time.Minute)
	return db, nil
}

// NewService creates a Service that writes the row of the identity into the
// configured table using db.
func NewService(log *slog.Logger, conf Config, identity Identity, db *sql.DB) *Service {
	return &Service{
		log:      log,
		db:       db,
		identity: identity,
		table:    conf.TableName,
		q:        newQueries(conf.TableName),
	}
}

// EnsureTableExists creates the server list table if it does not exist yet.
// It never creates or alters rows.
func (s *Service) EnsureTableExists(ctx context.Context) error {
	if err := s.exec(ctx, s.q.createTable); err != nil {
		return fmt.Errorf("ensure table %s: %w", s.table, err)
	}
	s.log.Info("server list table ready", "table", s.table)
	return nil
}

// UpdateServer writes the full state of the server and marks it online.
func (s *Service) UpdateServer(ctx context.Context, activePlayers, maxPlayers int, mapName string) error {
	if strings.TrimSpace(mapName) == "" {
		mapName = internal.UnknownMapName
	}
	err := s.exec(ctx, s.q.updateServer,
		s.identity.ID,
		s.identity.IP,
		s.identity.Name,
		activePlayers,
		maxPlayers,
		mapName,
	)
	if err != nil {
		return fmt.Errorf("update server %d: %w", s.identity.ID, err)
	}
	s.log.Debug("server row updated", "id", s.identity.ID, "players", activePlayers, "max", maxPlayers, "map", mapName)
	return nil
}

// SetStatus writes only the status of the server. The active player count is
// zeroed when resetPlayers is set and left as is otherwise.
func (s *Service) SetStatus(ctx context.Context, status int, resetPlayers bool) error {
	query := s.q.setStatus
	if resetPlayers {
		query = s.q.setOffline
	}
	if err := s.exec(ctx, query, s.identity.ID, status); err != nil {
		return fmt.Errorf("set status of server %d: %w", s.identity.ID, err)
	}
	s.log.Info("server status set", "id", s.identity.ID, "status", statusName(status))
	return nil
}

// Ping checks that the database can be reached.
func (s *Service) Ping(ctx context.Context) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *Service) Close() error {
	return s.db.Close()
}

// exec runs a single statement on its own connection.
func (s *Service) exec(ctx context.Context, query string, args ...any) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err = conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// conn ...
func (s *Service) conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return conn, nil
}

// statusName ...
func statusName(status int) string {
	if status == internal.StatusOnline {
		return "online"
	}
	return "offline"
}
