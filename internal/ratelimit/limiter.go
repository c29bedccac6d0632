// Package ratelimit provides rate limiting for booking submissions.
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	// SubmitCooldown is the minimum time between submissions per
	// requester (default: 2s). Keeps a double-clicked submit button from
	// racing itself against the backend.
	SubmitCooldown time.Duration
	// SubmitMaxPerHour caps submissions per requester per hour
	// (default: 30).
	SubmitMaxPerHour int

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		SubmitCooldown:   2 * time.Second,
		SubmitMaxPerHour: 30,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// entry tracks request counts and timestamps.
type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time // Most recent request (for cooldown)
}

// Limiter rate-limits booking submissions per requester.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.Mutex
	// Keyed by hash of requester id
	byRequester map[string]*entry
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Limiter{
		config:      cfg,
		clock:       clock,
		byRequester: make(map[string]*entry),
	}
}

// CheckSubmit checks if a submission is allowed and records it when so.
func (l *Limiter) CheckSubmit(requesterID string) LimitResult {
	now := l.clock.Now()
	key := hashKey(requesterID)

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.byRequester[key]
	if e == nil {
		l.byRequester[key] = &entry{count: 1, firstAt: now, lastAt: now}
		l.evictStale(now)
		return LimitResult{Allowed: true}
	}

	if elapsed := now.Sub(e.lastAt); elapsed < l.config.SubmitCooldown {
		return LimitResult{
			Allowed:    false,
			RetryAfter: l.config.SubmitCooldown - elapsed,
			Reason:     "cooldown",
		}
	}

	if now.Sub(e.firstAt) >= time.Hour {
		// Window expired, start a fresh one
		e.count = 0
		e.firstAt = now
	}
	if e.count >= l.config.SubmitMaxPerHour {
		return LimitResult{
			Allowed:    false,
			RetryAfter: time.Hour - now.Sub(e.firstAt),
			Reason:     "hourly_limit",
		}
	}

	e.count++
	e.lastAt = now
	return LimitResult{Allowed: true}
}

// evictStale drops entries idle for more than an hour. Called with the
// lock held; bounded work since maps stay small per process.
func (l *Limiter) evictStale(now time.Time) {
	for key, e := range l.byRequester {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byRequester, key)
		}
	}
}

func hashKey(identifier string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(identifier))))
	return hex.EncodeToString(sum[:])
}
