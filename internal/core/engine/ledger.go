package engine

import (
	"time"

	"github.com/namelens/fredlens/internal/core"
)

// DefaultWindow is the sliding window FRED applies to its request quota.
const DefaultWindow = time.Minute

// DefaultMaxRequests is the documented FRED quota per window.
const DefaultMaxRequests = 120

// minTimeRemaining keeps downstream divisions away from zero.
const minTimeRemaining = time.Second

// Ledger records the timestamps of recent requests inside a sliding window.
//
// A Ledger is not safe for concurrent use; owners serialize access.
type Ledger struct {
	window   time.Duration
	attempts []time.Time
}

// NewLedger creates an empty ledger. A non-positive window uses DefaultWindow.
func NewLedger(window time.Duration) *Ledger {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Ledger{window: window}
}

// Window returns the ledger window.
func (l *Ledger) Window() time.Duration {
	return l.window
}

// Purge drops leading entries that are a full window old or older.
func (l *Ledger) Purge(now time.Time) {
	cutoff := now.Add(-l.window)
	idx := 0
	for idx < len(l.attempts) && !l.attempts[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return
	}
	l.attempts = append(l.attempts[:0], l.attempts[idx:]...)
}

// Record appends a request timestamp.
func (l *Ledger) Record(now time.Time) {
	l.attempts = append(l.attempts, now)
}

// Len returns the number of recorded entries, including expired ones not yet
// purged.
func (l *Ledger) Len() int {
	return len(l.attempts)
}

// Oldest returns the oldest recorded entry.
func (l *Ledger) Oldest() (time.Time, bool) {
	if len(l.attempts) == 0 {
		return time.Time{}, false
	}
	return l.attempts[0], true
}

// Entries returns a copy of the recorded timestamps, oldest first.
func (l *Ledger) Entries() []time.Time {
	out := make([]time.Time, len(l.attempts))
	copy(out, l.attempts)
	return out
}

// Remaining purges the ledger and computes the budget left for maxRequests.
func (l *Ledger) Remaining(now time.Time, maxRequests int) core.Budget {
	l.Purge(now)

	requests := maxRequests - len(l.attempts)
	if requests < 0 {
		requests = 0
	}

	remaining := l.window
	if oldest, ok := l.Oldest(); ok {
		remaining = l.window - now.Sub(oldest)
	}
	if remaining < minTimeRemaining {
		remaining = minTimeRemaining
	}

	return core.Budget{Requests: requests, Time: remaining}
}
