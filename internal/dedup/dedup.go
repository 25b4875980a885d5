// Package dedup implements time-windowed duplicate suppression for
// recognized plates. A plate re-observed within the window of its last
// accepted sighting is a duplicate; anything else is reportable.
package dedup

import (
	"sync"
	"time"
)

// Filter tracks the last accepted sighting per plate.
//
// ShouldAccept and Mark are individually safe for concurrent use, but a
// caller admitting detections from multiple goroutines must hold its own
// lock across the check-then-mark pair, otherwise two racing observers of
// the same plate can both pass the check.
type Filter struct {
	mu       sync.Mutex
	window   time.Duration
	lastSeen map[string]time.Time
}

// NewFilter creates a filter with the given suppression window. The window
// must not be negative; zero disables suppression entirely.
func NewFilter(window time.Duration) *Filter {
	return &Filter{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// ShouldAccept reports whether a sighting of plate at the given time is a
// new, reportable event. The decision uses the raw difference from the
// last accepted sighting: if the caller's clock goes backwards the
// difference is negative and the sighting is suppressed like any other
// within-window repeat.
func (f *Filter) ShouldAccept(plate string, at time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shouldAcceptLocked(plate, at)
}

// Mark records an accepted sighting of plate.
func (f *Filter) Mark(plate string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSeen[plate] = at
}

// Admit combines ShouldAccept and Mark in one critical section: it marks
// the sighting and returns true only if it was not a duplicate.
func (f *Filter) Admit(plate string, at time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.shouldAcceptLocked(plate, at) {
		return false
	}
	f.lastSeen[plate] = at
	return true
}

// Seen returns the last accepted sighting time for plate, if any.
func (f *Filter) Seen(plate string) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.lastSeen[plate]
	return at, ok
}

// Window returns the configured suppression window.
func (f *Filter) Window() time.Duration {
	return f.window
}

func (f *Filter) shouldAcceptLocked(plate string, at time.Time) bool {
	if f.window == 0 {
		return true
	}
	last, ok := f.lastSeen[plate]
	if !ok {
		return true
	}
	return at.Sub(last) >= f.window
}
