// Package gate provides an interval gate that lets at most one trigger through
// per interval. Triggers arriving too early are dropped, not deferred.
package gate

import (
	"sync"
	"time"
)

// Gate ...
type Gate struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// New returns a gate that opens at most once per interval. A non-positive
// interval never blocks.
func New(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Allow reports whether a trigger at now may pass. A passing trigger becomes
// the new reference point. The gate is open again at exactly one interval
// after the last pass.
func (g *Gate) Allow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.interval > 0 && !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Mark records now as a pass without checking the interval.
func (g *Gate) Mark(now time.Time) {
	g.mu.Lock()
	g.last = now
	g.mu.Unlock()
}

// Last returns the time of the last pass, or the zero time if nothing passed yet.
func (g *Gate) Last() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Interval ...
func (g *Gate) Interval() time.Duration {
	return g.interval
}
