// Package limiter implements the in-process sliding-window rate limiter
// used as the cheap first gate in front of the persisted one. It holds all
// state in memory, so a process restart clears every counter; it is a
// throttle for well-behaved callers, not a security boundary.
package limiter

import (
	"sync"
	"time"
)

// Clock is injected so window arithmetic can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

const (
	sweepInterval = 5 * time.Minute
	maxIdleAge    = time.Hour
)

type entry struct {
	count        int
	firstAttempt time.Time
	lastAttempt  time.Time
}

type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   Clock
	done    chan struct{}
}

func New() *Limiter {
	return NewWithClock(systemClock{})
}

func NewWithClock(clock Clock) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		clock:   clock,
	}
}

// Start launches the background sweep that evicts entries idle longer than
// maxIdleAge. The sweep bounds memory growth from many distinct caller
// keys; it is independent of any per-action window.
func (l *Limiter) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != nil {
		return
	}
	l.done = make(chan struct{})

	go func(done chan struct{}) {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-done:
				return
			}
		}
	}(l.done)
}

func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done == nil {
		return
	}
	close(l.done)
	l.done = nil
}

// IsRateLimited records an attempt for key and reports whether the caller
// has gone over budget. Every call counts, including ones that return
// false. The window restarts once more than window has elapsed since the
// first attempt in it.
func (l *Limiter) IsRateLimited(key string, maxAttempts int, window time.Duration, callerID string) bool {
	now := l.clock.Now()
	composite := compositeKey(key, callerID)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[composite]
	if !ok || now.Sub(e.firstAttempt) > window {
		l.entries[composite] = &entry{
			count:        1,
			firstAttempt: now,
			lastAttempt:  now,
		}
		return false
	}

	e.count++
	e.lastAttempt = now

	return e.count > maxAttempts
}

// ResetTime returns how long until the window for key resets, or 0 when no
// attempts are on record.
func (l *Limiter) ResetTime(key string, window time.Duration, callerID string) time.Duration {
	composite := compositeKey(key, callerID)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[composite]
	if !ok {
		return 0
	}

	remaining := window - l.clock.Now().Sub(e.firstAttempt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears all throttling state for key immediately.
func (l *Limiter) Reset(key string, callerID string) {
	composite := compositeKey(key, callerID)

	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, composite)
}

func (l *Limiter) sweep() {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if now.Sub(e.lastAttempt) > maxIdleAge {
			delete(l.entries, key)
		}
	}
}

func compositeKey(key, callerID string) string {
	if callerID == "" {
		return key
	}
	return callerID + ":" + key
}
