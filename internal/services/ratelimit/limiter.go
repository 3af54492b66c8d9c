package ratelimit

import (
	"sync"
	"time"

	"github.com/mcoot/wordcraft/internal/dependencies/clock"
)

// Config holds configuration for the rate limiter
type Config struct {
	// Messages is the most a connection may send in any trailing Window
	Messages int
	Window   time.Duration
}

// DefaultConfig returns default rate limit configuration
func DefaultConfig() Config {
	return Config{
		Messages: 5,
		Window:   time.Second,
	}
}

// Limiter is a per-connection sliding-window admission check
type Limiter struct {
	clock clock.Clock
	cfg   Config

	mu     sync.Mutex
	recent map[string][]time.Time
}

// New creates a new Limiter
func New(clock clock.Clock, cfg Config) *Limiter {
	defaults := DefaultConfig()
	if cfg.Messages <= 0 {
		cfg.Messages = defaults.Messages
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}
	return &Limiter{
		clock:  clock,
		cfg:    cfg,
		recent: make(map[string][]time.Time),
	}
}

// Allow records an inbound message and reports whether it is admitted.
// Timestamps older than the window are pruned first; the message is
// admitted if fewer than Messages remain.
func (l *Limiter) Allow(connID string) bool {
	now := l.clock.Now()
	cutoff := now.Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.recent[connID]
	kept := stamps[:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.cfg.Messages {
		l.recent[connID] = kept
		return false
	}
	l.recent[connID] = append(kept, now)
	return true
}

// Forget releases the state held for a connection
func (l *Limiter) Forget(connID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.recent, connID)
}

// Tracked returns how many connections currently hold state
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recent)
}
