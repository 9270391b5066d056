package search

import (
	"sync"
	"time"
)

type generation struct {
	latest   uint64
	lastSeen time.Time
}

// Generations tracks the newest query generation per client session so that
// responses to superseded queries can be discarded on arrival instead of
// relying on client-side debounce timers.
type Generations struct {
	mu       sync.Mutex
	sessions map[string]*generation
	ttl      time.Duration
	now      func() time.Time
}

// NewGenerations returns a tracker that forgets sessions idle for longer than ttl.
func NewGenerations(ttl time.Duration) *Generations {
	return &Generations{
		sessions: make(map[string]*generation),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Begin records gen for session. It returns false when a newer generation has
// already been seen, meaning the request is stale before it starts.
func (g *Generations) Begin(session string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	s, ok := g.sessions[session]
	if !ok {
		g.sessions[session] = &generation{latest: gen, lastSeen: now}
		return true
	}
	s.lastSeen = now
	if gen < s.latest {
		return false
	}
	s.latest = gen
	return true
}

// IsCurrent reports whether gen is still the newest generation of session.
func (g *Generations) IsCurrent(session string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[session]
	return !ok || s.latest <= gen
}

// Sweep drops sessions idle longer than the ttl and returns how many were removed.
func (g *Generations) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	cutoff := g.now().Add(-g.ttl)
	for key, s := range g.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(g.sessions, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until stop is closed.
func (g *Generations) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.Sweep()
		case <-stop:
			return
		}
	}
}
