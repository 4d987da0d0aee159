package session

import (
	"context"
	"sync"
	"time"
)

const sweepThreshold = 4096

type memoryEntry struct {
	gen     int64
	expires time.Time
}

// MemoryTracker is a process-local Tracker used when Redis is not configured.
type MemoryTracker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryTracker constructs a MemoryTracker. A non-positive ttl selects DefaultTTL.
func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryTracker{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

// Begin starts a new generation.
func (t *MemoryTracker) Begin(_ context.Context, sessionID, topic string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if len(t.entries) >= sweepThreshold {
		t.sweep(now)
	}

	k := key(sessionID, topic)
	e := t.entries[k]
	if now.After(e.expires) {
		e.gen = 0
	}
	e.gen++
	e.expires = now.Add(t.ttl)
	t.entries[k] = e
	return e.gen, nil
}

// IsCurrent reports whether gen is still the latest generation.
func (t *MemoryTracker) IsCurrent(_ context.Context, sessionID, topic string, gen int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key(sessionID, topic)]
	if !ok || t.now().After(e.expires) {
		return true, nil
	}
	return e.gen == gen, nil
}

// Len returns the number of tracked (session, topic) pairs.
func (t *MemoryTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *MemoryTracker) sweep(now time.Time) {
	for k, e := range t.entries {
		if now.After(e.expires) {
			delete(t.entries, k)
		}
	}
}
