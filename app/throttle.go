package app

import (
	"sync"
	"time"
)

// Throttle enforces a minimum spacing between fetches of the same source.
// It is advisory: a source inside its window is skipped for the current
// run, never delayed. Safe for concurrent use.
type Throttle struct {
	mu      sync.Mutex
	spacing time.Duration
	last    map[string]time.Time

	now func() time.Time
}

// NewThrottle returns a throttle with the given spacing. A zero or
// negative spacing disables throttling entirely.
func NewThrottle(spacing time.Duration) *Throttle {
	return &Throttle{
		spacing: spacing,
		last:    make(map[string]time.Time),
		now:     time.Now,
	}
}

// Allow reports whether sourceID may be fetched now and, if so, records
// the attempt.
func (t *Throttle) Allow(sourceID string) bool {
	if t == nil || t.spacing <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if last, ok := t.last[sourceID]; ok && now.Sub(last) < t.spacing {
		return false
	}
	t.last[sourceID] = now
	return true
}
