package status

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smell-of-curry/servers-info-track/tracker/task"
)

// row mirrors one row of the server list table.
type row struct {
	ip, name, mapName   string
	active, max, status int
}

// fakeStore applies the same upsert semantics as the MySQL statements.
type fakeStore struct {
	mu sync.Mutex

	id       int
	ip, name string

	rows      map[int]*row
	ensured   int
	updates   int
	ensureErr error
	updateErr error

	// updateGate, when set, is received from before an update is applied.
	updateGate chan struct{}
}

func newFakeStore(id int, name, ip string) *fakeStore {
	return &fakeStore{id: id, name: name, ip: ip, rows: map[int]*row{}}
}

func (s *fakeStore) EnsureTableExists(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensured++
	return s.ensureErr
}

func (s *fakeStore) UpdateServer(ctx context.Context, active, max int, mapName string) error {
	if s.updateGate != nil {
		select {
		case <-s.updateGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates++
	s.rows[s.id] = &row{ip: s.ip, name: s.name, mapName: mapName, active: active, max: max, status: 1}
	return nil
}

func (s *fakeStore) SetStatus(_ context.Context, status int, resetPlayers bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[s.id]
	if !ok {
		s.rows[s.id] = &row{status: status}
		return nil
	}
	r.status = status
	if resetPlayers {
		r.active = 0
	}
	return nil
}

func (s *fakeStore) row(t *testing.T) row {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[s.id]
	if !ok {
		t.Fatalf("no row for id %d", s.id)
	}
	return *r
}

func (s *fakeStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

type fakeSource struct {
	mu   sync.Mutex
	snap Snapshot
	err  error
}

func (f *fakeSource) Snapshot(context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.err
}

func (f *fakeSource) set(s Snapshot) {
	f.mu.Lock()
	f.snap = s
	f.mu.Unlock()
}

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	c     *Controller
	store *fakeStore
	src   *fakeSource
	sup   *task.Supervisor
	clock *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		store: newFakeStore(5, "Alpha", "10.0.0.5"),
		src:   &fakeSource{},
		sup:   task.NewSupervisor(log, time.Second),
		clock: &clock{now: time.Unix(1_700_000_000, 0)},
	}
	h.c = NewController(log, Options{
		ServerID:       5,
		ServerName:     "Alpha",
		ServerIP:       "10.0.0.5",
		UpdateInterval: 3 * time.Second,
		UnloadTimeout:  time.Second,
		Clock:          h.clock.Now,
	}, h.store, h.src, h.sup)
	return h
}

func (h *harness) wait(t *testing.T) {
	t.Helper()
	if !h.sup.Wait(time.Second) {
		t.Fatal("background writes did not finish")
	}
}

func TestLoadWritesOnlineRow(t *testing.T) {
	h := newHarness(t)
	h.c.Load()
	h.wait(t)

	got := h.store.row(t)
	want := row{ip: "10.0.0.5", name: "Alpha", mapName: "unknown", active: 0, max: 0, status: 1}
	if got != want {
		t.Fatalf("row = %+v, want %+v", got, want)
	}
	if h.store.ensured != 1 {
		t.Fatalf("table ensured %d times, want 1", h.store.ensured)
	}
	if r := h.c.Report(); !r.Online || r.ServerID != 5 || r.MapName != "unknown" {
		t.Fatalf("report = %+v", r)
	}
}

func TestLoadContinuesAfterTableFailure(t *testing.T) {
	h := newHarness(t)
	h.store.ensureErr = errors.New("access denied")
	h.src.set(Snapshot{MapName: "lobby", ActivePlayers: 2, MaxPlayers: 10})

	h.c.Load()
	h.wait(t)

	if got := h.store.row(t); got.status != 1 || got.active != 2 || got.mapName != "lobby" {
		t.Fatalf("row = %+v", got)
	}
	if h.sup.Failures() != 1 {
		t.Fatalf("failures = %d, want 1", h.sup.Failures())
	}
}

func TestUnloadMarksOffline(t *testing.T) {
	h := newHarness(t)
	h.src.set(Snapshot{MapName: "lobby", ActivePlayers: 4, MaxPlayers: 10})
	h.c.Load()
	h.wait(t)

	h.c.Unload()

	got := h.store.row(t)
	if got.status != 0 || got.active != 0 {
		t.Fatalf("row after unload = %+v", got)
	}
	if got.max != 10 || got.mapName != "lobby" {
		t.Fatalf("unload touched map/max: %+v", got)
	}
	if h.c.Report().Online {
		t.Fatal("report still online after unload")
	}
}

func TestShutdownMarksOfflineAndResetsPlayers(t *testing.T) {
	h := newHarness(t)
	h.src.set(Snapshot{MapName: "lobby", ActivePlayers: 7, MaxPlayers: 10})
	h.c.Load()
	h.wait(t)

	h.c.Shutdown("")
	h.wait(t)

	if got := h.store.row(t); got.status != 0 || got.active != 0 {
		t.Fatalf("row after shutdown = %+v", got)
	}
}

func TestUpdatesIgnoredAfterShutdown(t *testing.T) {
	h := newHarness(t)
	h.c.Load()
	h.wait(t)
	h.c.Shutdown("SIGTERM")
	h.wait(t)

	h.clock.Advance(time.Minute)
	if h.c.PlayerDisconnected() {
		t.Fatal("update scheduled after shutdown")
	}
	h.wait(t)
	if got := h.store.row(t); got.status != 0 {
		t.Fatalf("row flipped back online: %+v", got)
	}
}

func TestDebounce(t *testing.T) {
	tests := []struct {
		name  string
		gap   time.Duration
		wantN int
	}{
		{"within interval", time.Second, 1},
		{"exactly interval", 3 * time.Second, 2},
		{"beyond interval", 4 * time.Second, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.clock.Advance(time.Hour)

			h.c.PlayerConnected()
			h.wait(t)
			h.clock.Advance(tt.gap)
			h.c.PlayerDisconnected()
			h.wait(t)

			if n := h.store.updateCount(); n != tt.wantN {
				t.Fatalf("%d writes, want %d", n, tt.wantN)
			}
		})
	}
}

func TestLoadClosesDebounceWindow(t *testing.T) {
	h := newHarness(t)
	h.c.Load()
	h.wait(t)

	h.clock.Advance(time.Second)
	if h.c.PlayerConnected() {
		t.Fatal("update scheduled inside the window opened by load")
	}
}

func TestUpdateOverwritesCounts(t *testing.T) {
	h := newHarness(t)
	h.src.set(Snapshot{MapName: "lobby", ActivePlayers: 5, MaxPlayers: 10})
	h.c.PlayerConnected()
	h.wait(t)

	h.clock.Advance(5 * time.Second)
	h.src.set(Snapshot{MapName: "arena", ActivePlayers: 1, MaxPlayers: 12})
	h.c.PlayerDisconnected()
	h.wait(t)

	want := row{ip: "10.0.0.5", name: "Alpha", mapName: "arena", active: 1, max: 12, status: 1}
	if got := h.store.row(t); got != want {
		t.Fatalf("row = %+v, want %+v", got, want)
	}
}

func TestSnapshotFailureIsRecorded(t *testing.T) {
	h := newHarness(t)
	h.src.err = errors.New("world closed")
	h.c.PlayerConnected()
	h.wait(t)

	if h.store.updateCount() != 0 {
		t.Fatal("update written without a snapshot")
	}
	if h.sup.Failures() != 1 {
		t.Fatalf("failures = %d, want 1", h.sup.Failures())
	}
}

func TestUnloadWaitsForInFlightUpdate(t *testing.T) {
	h := newHarness(t)
	h.store.updateGate = make(chan struct{})
	h.src.set(Snapshot{MapName: "lobby", ActivePlayers: 3, MaxPlayers: 10})
	h.c.PlayerConnected()

	done := make(chan struct{})
	go func() {
		h.c.Unload()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("unload finished before the in-flight update")
	case <-time.After(20 * time.Millisecond):
	}
	close(h.store.updateGate)
	<-done

	if got := h.store.row(t); got.status != 0 || got.active != 0 {
		t.Fatalf("row after unload = %+v", got)
	}
}
