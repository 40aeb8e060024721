// Package task runs database work off the caller's goroutine while keeping
// every failure observable: failures are logged, counted and reported to Sentry.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/df-mc/atomic"
	"github.com/getsentry/sentry-go"
)

// Func is a unit of background work.
type Func func(ctx context.Context) error

// Supervisor owns all background tasks of the tracker.
type Supervisor struct {
	log     *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	active int
	// idle is closed when active drops back to zero.
	idle chan struct{}

	failures atomic.Int64
	errMu    sync.Mutex
	lastErr  error
}

// NewSupervisor creates a Supervisor that gives every task at most timeout to
// complete. A non-positive timeout disables the deadline.
func NewSupervisor(log *slog.Logger, timeout time.Duration) *Supervisor {
	return &Supervisor{log: log, timeout: timeout}
}

// Go runs fn on a new goroutine. It returns false if the supervisor no longer
// accepts work.
func (s *Supervisor) Go(name string, fn Func) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Warn("task rejected, supervisor closed", "task", name)
		return false
	}
	if s.active == 0 {
		s.idle = make(chan struct{})
	}
	s.active++
	s.mu.Unlock()

	go func() {
		defer s.done()
		_ = s.run(context.Background(), name, fn)
	}()
	return true
}

// done ...
func (s *Supervisor) done() {
	s.mu.Lock()
	s.active--
	if s.active == 0 {
		close(s.idle)
	}
	s.mu.Unlock()
}

// Run runs fn on the calling goroutine and returns its error after it has
// been recorded.
func (s *Supervisor) Run(ctx context.Context, name string, fn Func) error {
	return s.run(ctx, name, fn)
}

// Wait blocks until all tasks started with Go have finished or the timeout
// elapses. It reports whether all tasks finished. Tasks started while Wait
// is blocked are not waited for; call Close first to rule them out.
func (s *Supervisor) Wait(timeout time.Duration) bool {
	s.mu.Lock()
	if s.active == 0 {
		s.mu.Unlock()
		return true
	}
	idle := s.idle
	s.mu.Unlock()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-idle:
		return true
	case <-t.C:
		return false
	}
}

// Close stops accepting new tasks. Running tasks are not interrupted and can
// still be waited for.
func (s *Supervisor) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Failures returns the number of failed tasks so far.
func (s *Supervisor) Failures() int64 {
	return s.failures.Load()
}

// LastError returns the most recent task failure, or nil.
func (s *Supervisor) LastError() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

// run ...
func (s *Supervisor) run(ctx context.Context, name string, fn Func) (err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.fail(name, err)
		}
	}()

	start := time.Now()
	if err = fn(ctx); err != nil {
		s.fail(name, err)
		return err
	}
	s.log.Debug("task done", "task", name, "took", time.Since(start))
	return nil
}

// fail records a task failure.
func (s *Supervisor) fail(name string, err error) {
	s.failures.Inc()
	s.errMu.Lock()
	s.lastErr = fmt.Errorf("%s: %w", name, err)
	s.errMu.Unlock()

	s.log.Error("task failed", "task", name, "error", err)
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("task", name)
		sentry.CaptureException(err)
	})
}
