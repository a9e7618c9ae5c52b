package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a limiter check. RetryAfter is only meaningful
// when Allowed is false.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Config controls window shape. Zero values pick the defaults used for the
// Steam inventory endpoint.
type Config struct {
	Window         time.Duration // per-key sliding window
	MaxPerWindow   int           // requests allowed per key per window
	GlobalCooldown time.Duration // minimum gap between any two requests
}

func (c *Config) defaults() {
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.MaxPerWindow <= 0 {
		c.MaxPerWindow = 3
	}
	if c.GlobalCooldown < 0 {
		c.GlobalCooldown = 0
	}
}

type window struct {
	start time.Time
	count int
}

// Limiter tracks a per-key sliding window plus one global cooldown gate that
// protects the shared upstream regardless of which key is asking.
//
// State is in-memory and process-lifetime scoped: a restart resets all
// windows. That trade-off favors availability over strictness.
type Limiter struct {
	cfg Config

	mu      sync.Mutex
	windows map[string]*window
	lastAny time.Time

	now func() time.Time // injectable for tests
}

func New(cfg Config) *Limiter {
	cfg.defaults()
	return &Limiter{
		cfg:     cfg,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Check records an attempt for key and decides whether it may proceed.
func (l *Limiter) Check(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if l.cfg.GlobalCooldown > 0 && !l.lastAny.IsZero() {
		if gap := now.Sub(l.lastAny); gap < l.cfg.GlobalCooldown {
			return Decision{RetryAfter: l.cfg.GlobalCooldown - gap}
		}
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		l.windows[key] = &window{start: now, count: 1}
		l.lastAny = now
		return Decision{Allowed: true}
	}

	if w.count >= l.cfg.MaxPerWindow {
		return Decision{RetryAfter: l.cfg.Window - now.Sub(w.start)}
	}

	w.count++
	l.lastAny = now
	return Decision{Allowed: true}
}

// Reset drops all limiter state. Test helper.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*window)
	l.lastAny = time.Time{}
}
