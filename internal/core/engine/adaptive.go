package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/namelens/fredlens/internal/core"
)

// AdaptiveLimiter throttles concurrent callers before the quota is reached.
// Each request spaces itself across the time left in the window, and the
// number of callers allowed to wait at once shrinks as the budget depletes.
type AdaptiveLimiter struct {
	MaxRequests int
	Window      time.Duration
	Margin      float64
	Clock       func() time.Time
	Sleep       SleepFunc

	// OnThrottle, when set, observes every computed suspension.
	OnThrottle func(budget core.Budget, wait time.Duration)

	mu     sync.Mutex
	ledger *Ledger
	pool   *permitPool
}

// NewAdaptiveLimiter creates a limiter for concurrent callers.
func NewAdaptiveLimiter(maxRequests int, window time.Duration) *AdaptiveLimiter {
	return &AdaptiveLimiter{MaxRequests: maxRequests, Window: window}
}

// PermitCapacity returns the permit pool size for the remaining budget:
// max(1, min(maxRequests/10, remaining/2)).
func PermitCapacity(maxRequests, remaining int) int {
	capacity := maxRequests / 10
	if half := remaining / 2; half < capacity {
		capacity = half
	}
	if capacity < 1 {
		capacity = 1
	}
	return capacity
}

// SpacingDelay returns how long a request waits before it is sent. With budget
// left the remaining time is split evenly; an exhausted budget waits out a
// whole window.
func SpacingDelay(budget core.Budget, window time.Duration) time.Duration {
	if budget.Requests <= 0 {
		if window <= 0 {
			window = DefaultWindow
		}
		return window
	}
	return budget.Time / time.Duration(budget.Requests)
}

// Wait acquires a permit, resizes the pool, sleeps the computed spacing and
// records the request. A cancelled wait releases its permit and records
// nothing.
func (l *AdaptiveLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pool := l.permits()
	if err := pool.acquire(ctx); err != nil {
		return err
	}
	defer pool.release()

	budget, window := l.resize()
	wait := SpacingDelay(budget, window)
	if l.OnThrottle != nil {
		l.OnThrottle(budget, wait)
	}

	if err := l.sleep(ctx, wait); err != nil {
		return err
	}

	l.mu.Lock()
	l.getLedger().Record(l.now())
	l.mu.Unlock()

	return nil
}

// State reports the current budget and permit capacity.
func (l *AdaptiveLimiter) State() core.RateLimitState {
	l.mu.Lock()
	defer l.mu.Unlock()

	ledger := l.getLedger()
	now := l.now()
	budget := ledger.Remaining(now, l.limit())
	return core.RateLimitState{
		Mode:        string(ModeAsync),
		MaxRequests: l.limit(),
		Window:      ledger.Window().String(),
		InWindow:    ledger.Len(),
		Remaining:   budget.Requests,
		ResetIn:     budget.Time.Round(time.Second).String(),
		Permits:     l.getPool().size(),
		ObservedAt:  now,
	}
}

// Capacity returns the current permit capacity.
func (l *AdaptiveLimiter) Capacity() int {
	return l.permits().size()
}

// ApplySafetyMargin adjusts the effective request limit by a ratio (0-1].
// An existing permit pool is resized to the new limit at once.
func (l *AdaptiveLimiter) ApplySafetyMargin(margin float64) {
	if l == nil || margin <= 0 || margin > 1 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Margin = margin
	if l.pool != nil {
		l.pool.resize(l.capacityNow())
	}
}

// Seed records past request timestamps, oldest first.
func (l *AdaptiveLimiter) Seed(timestamps ...time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ledger := l.getLedger()
	for _, ts := range timestamps {
		ledger.Record(ts)
	}
}

func (l *AdaptiveLimiter) permits() *permitPool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getPool()
}

func (l *AdaptiveLimiter) resize() (core.Budget, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit := l.limit()
	ledger := l.getLedger()
	budget := ledger.Remaining(l.now(), limit)
	l.getPool().resize(PermitCapacity(limit, budget.Requests))
	return budget, ledger.Window()
}

// capacityNow is the pool size for the current budget. Callers hold l.mu.
func (l *AdaptiveLimiter) capacityNow() int {
	limit := l.limit()
	return PermitCapacity(limit, l.getLedger().Remaining(l.now(), limit).Requests)
}

// getPool sizes the semaphore for the unmargined limit. A margin only lowers
// the limit, so the ceiling holds for any margin applied later.
func (l *AdaptiveLimiter) getPool() *permitPool {
	if l.pool == nil {
		l.pool = newPermitPool(effectiveLimit(l.MaxRequests, 0) / 10)
		l.pool.resize(l.capacityNow())
	}
	return l.pool
}

// Snapshot returns the timestamps still inside the window, oldest first.
func (l *AdaptiveLimiter) Snapshot() []time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	ledger := l.getLedger()
	ledger.Purge(l.now())
	return ledger.Entries()
}

func (l *AdaptiveLimiter) getLedger() *Ledger {
	if l.ledger == nil {
		l.ledger = NewLedger(l.Window)
	}
	return l.ledger
}

func (l *AdaptiveLimiter) limit() int {
	return effectiveLimit(l.MaxRequests, l.Margin)
}

func (l *AdaptiveLimiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now().UTC()
}

func (l *AdaptiveLimiter) sleep(ctx context.Context, d time.Duration) error {
	if l.Sleep != nil {
		return l.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

// permitPool is a counting semaphore whose capacity changes in place.
//
// The underlying semaphore is sized to the ceiling. Weight above the current
// capacity is held back as a reserve. A shrink that cannot take weight back
// because permits are in flight is recorded as owed and settled as those
// permits are released, so permits already handed out stay valid.
type permitPool struct {
	mu       sync.Mutex
	sem      *semaphore.Weighted
	ceiling  int64
	capacity int64
	reserved int64
	owed     int64
}

func newPermitPool(ceiling int) *permitPool {
	if ceiling < 1 {
		ceiling = 1
	}
	return &permitPool{
		sem:      semaphore.NewWeighted(int64(ceiling)),
		ceiling:  int64(ceiling),
		capacity: int64(ceiling),
	}
}

func (p *permitPool) acquire(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

func (p *permitPool) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.owed > 0 {
		p.owed--
		p.reserved++
		return
	}
	p.sem.Release(1)
}

func (p *permitPool) resize(capacity int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := int64(capacity)
	if target < 1 {
		target = 1
	}
	if target > p.ceiling {
		target = p.ceiling
	}

	held := p.ceiling - target
	for p.reserved+p.owed > held {
		if p.owed > 0 {
			p.owed--
			continue
		}
		p.reserved--
		p.sem.Release(1)
	}
	for p.reserved+p.owed < held {
		if p.sem.TryAcquire(1) {
			p.reserved++
		} else {
			p.owed++
		}
	}
	p.capacity = target
}

func (p *permitPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.capacity)
}
