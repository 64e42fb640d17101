package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/namelens/fredlens/internal/core"
)

// Mode selects how a client coordinates its callers.
type Mode string

const (
	// ModeSync gates callers with the blocking SyncLimiter.
	ModeSync Mode = "sync"
	// ModeAsync coordinates concurrent callers with the AdaptiveLimiter.
	ModeAsync Mode = "async"
)

// ParseMode normalizes a mode string. Empty selects ModeSync.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case "", ModeSync:
		return ModeSync, nil
	case ModeAsync:
		return ModeAsync, nil
	default:
		return "", core.NewValidationError("mode", "unsupported mode %q (use sync or async)", value)
	}
}

// Limiter gates outgoing requests against the request budget.
type Limiter interface {
	// Wait blocks until a request may be sent, or ctx is done.
	Wait(ctx context.Context) error
	// State reports the current budget.
	State() core.RateLimitState
}

// Persistent is implemented by limiters whose ledger can be saved and
// restored between processes.
type Persistent interface {
	Seed(timestamps ...time.Time)
	Snapshot() []time.Time
	ApplySafetyMargin(margin float64)
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SyncLimiter is a worst-case gate: it only blocks once the window already
// holds MaxRequests entries, and does not spread load.
type SyncLimiter struct {
	MaxRequests int
	Window      time.Duration
	Margin      float64
	Clock       func() time.Time
	Sleep       SleepFunc

	// OnThrottle, when set, observes every blocking wait.
	OnThrottle func(budget core.Budget, wait time.Duration)

	mu     sync.Mutex
	ledger *Ledger
}

// NewSyncLimiter creates a blocking limiter.
func NewSyncLimiter(maxRequests int, window time.Duration) *SyncLimiter {
	return &SyncLimiter{MaxRequests: maxRequests, Window: window}
}

// Wait blocks until the request fits in the window, then records it.
// The lock is held while sleeping so callers queue in arrival order.
func (l *SyncLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ledger := l.getLedger()
	limit := l.limit()

	now := l.now()
	ledger.Purge(now)
	if ledger.Len() >= limit {
		oldest, _ := ledger.Oldest()
		wait := ledger.Window() - now.Sub(oldest)
		if wait > 0 {
			if l.OnThrottle != nil {
				l.OnThrottle(core.Budget{Requests: 0, Time: wait}, wait)
			}
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
			now = l.now()
			ledger.Purge(now)
		}
	}

	ledger.Record(now)
	return nil
}

// State reports the current budget without recording a request.
func (l *SyncLimiter) State() core.RateLimitState {
	l.mu.Lock()
	defer l.mu.Unlock()

	ledger := l.getLedger()
	now := l.now()
	budget := ledger.Remaining(now, l.limit())
	return core.RateLimitState{
		Mode:        string(ModeSync),
		MaxRequests: l.limit(),
		Window:      ledger.Window().String(),
		InWindow:    ledger.Len(),
		Remaining:   budget.Requests,
		ResetIn:     budget.Time.Round(time.Second).String(),
		ObservedAt:  now,
	}
}

// ApplySafetyMargin adjusts the effective request limit by a ratio (0-1].
func (l *SyncLimiter) ApplySafetyMargin(margin float64) {
	if l == nil || margin <= 0 || margin > 1 {
		return
	}
	l.mu.Lock()
	l.Margin = margin
	l.mu.Unlock()
}

// Seed records past request timestamps, oldest first.
func (l *SyncLimiter) Seed(timestamps ...time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ledger := l.getLedger()
	for _, ts := range timestamps {
		ledger.Record(ts)
	}
}

// Snapshot returns the timestamps still inside the window, oldest first.
func (l *SyncLimiter) Snapshot() []time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	ledger := l.getLedger()
	ledger.Purge(l.now())
	return ledger.Entries()
}

func (l *SyncLimiter) getLedger() *Ledger {
	if l.ledger == nil {
		l.ledger = NewLedger(l.Window)
	}
	return l.ledger
}

func (l *SyncLimiter) limit() int {
	return effectiveLimit(l.MaxRequests, l.Margin)
}

func (l *SyncLimiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now().UTC()
}

func (l *SyncLimiter) sleep(ctx context.Context, d time.Duration) error {
	if l.Sleep != nil {
		return l.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

// SleepContext waits for d, returning early with ctx.Err() when ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func effectiveLimit(maxRequests int, margin float64) int {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if margin <= 0 || margin > 1 {
		return maxRequests
	}
	adjusted := int(math.Floor(float64(maxRequests) * margin))
	if adjusted < 1 {
		adjusted = 1
	}
	return adjusted
}
