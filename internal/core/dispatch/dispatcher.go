// Package dispatch sends rate-limited, cached and retried GET requests to the
// FRED web API and returns raw JSON payloads.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/engine"
)

// ErrSyncMode is returned by DispatchAsync on a dispatcher built for
// synchronous callers.
var ErrSyncMode = errors.New("dispatch: async dispatch requires async mode")

// Logger is the subset of the structured logger the dispatcher writes to.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// Recorder receives dispatch metrics.
type Recorder interface {
	Dispatched(path, outcome string)
	CacheLookup(hit bool)
	Retry(path string)
	Throttled(wait time.Duration, remaining int)
}

// Options configures a Dispatcher. Only BaseURL is required.
type Options struct {
	BaseURL string
	APIKey  string
	Mode    engine.Mode

	// CacheEnabled turns on the response cache; Cache must then be set.
	CacheEnabled bool
	Cache        Cache

	MaxRequestsPerWindow int
	Window               time.Duration
	Timeout              time.Duration
	Retry                RetryPolicy

	// RateLimitMargin scales MaxRequestsPerWindow down, within (0, 1].
	RateLimitMargin float64
	// Seed pre-loads the limiter with requests sent by earlier processes.
	Seed []time.Time

	HTTPClient *http.Client
	UserAgent  string
	Logger     Logger
	Recorder   Recorder

	// Limiter replaces the limiter Mode would select.
	Limiter engine.Limiter
	// Sleep replaces the pause between retries.
	Sleep engine.SleepFunc
}

// Result is the outcome of an asynchronous dispatch.
type Result struct {
	Payload json.RawMessage
	Err     error
}

type call func(ctx context.Context, path string, query url.Values) (json.RawMessage, error)

// Dispatcher is safe for concurrent use in async mode. In sync mode callers
// are queued behind the blocking limiter.
type Dispatcher struct {
	baseURL   string
	apiKey    string
	mode      engine.Mode
	timeout   time.Duration
	userAgent string

	client   *http.Client
	limiter  engine.Limiter
	cache    Cache
	retry    RetryPolicy
	logger   Logger
	recorder Recorder
	sleepFn  engine.SleepFunc

	do call
}

// New builds a dispatcher. The mode and cache setting are fixed for its
// lifetime.
func New(opts Options) (*Dispatcher, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, core.NewValidationError("base_url", "is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, core.NewValidationError("base_url", "%q is not an absolute URL", base)
	}

	mode, err := engine.ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	if opts.CacheEnabled && opts.Cache == nil {
		return nil, core.NewValidationError("cache", "enabled without a cache store")
	}

	d := &Dispatcher{
		baseURL:   base,
		apiKey:    opts.APIKey,
		mode:      mode,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		client:    opts.HTTPClient,
		retry:     opts.Retry.withDefaults(),
		logger:    opts.Logger,
		recorder:  opts.Recorder,
		sleepFn:   opts.Sleep,
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	if d.client == nil {
		d.client = &http.Client{Timeout: d.timeout}
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.recorder == nil {
		d.recorder = nopRecorder{}
	}

	d.limiter = opts.Limiter
	if d.limiter == nil {
		d.limiter = d.newLimiter(opts.MaxRequestsPerWindow, opts.Window)
	}
	if p, ok := d.limiter.(engine.Persistent); ok {
		p.ApplySafetyMargin(opts.RateLimitMargin)
		if len(opts.Seed) > 0 {
			p.Seed(opts.Seed...)
		}
	}

	next := call(d.fetch)
	if opts.CacheEnabled {
		d.cache = opts.Cache
		next = d.cached(next)
	}
	next = d.gated(next)
	d.do = d.retried(next)

	return d, nil
}

// Dispatch sends one GET to path with query and returns the JSON payload.
func (d *Dispatcher) Dispatch(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := d.do(ctx, path, query)
	d.recorder.Dispatched(path, outcome(err))
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// DispatchAsync runs Dispatch on its own goroutine. The channel yields exactly
// one Result and is then closed.
func (d *Dispatcher) DispatchAsync(ctx context.Context, path string, query url.Values) <-chan Result {
	out := make(chan Result, 1)
	if d.mode != engine.ModeAsync {
		out <- Result{Err: ErrSyncMode}
		close(out)
		return out
	}
	go func() {
		defer close(out)
		payload, err := d.Dispatch(ctx, path, query)
		out <- Result{Payload: payload, Err: err}
	}()
	return out
}

// Mode returns the concurrency mode chosen at construction.
func (d *Dispatcher) Mode() engine.Mode {
	return d.mode
}

// CacheEnabled reports whether responses are cached.
func (d *Dispatcher) CacheEnabled() bool {
	return d.cache != nil
}

// State reports the limiter budget.
func (d *Dispatcher) State() core.RateLimitState {
	return d.limiter.State()
}

// Snapshot returns the request timestamps still inside the window, for
// saving between runs. It is nil when the limiter keeps no ledger.
func (d *Dispatcher) Snapshot() []time.Time {
	if p, ok := d.limiter.(engine.Persistent); ok {
		return p.Snapshot()
	}
	return nil
}

func (d *Dispatcher) gated(next call) call {
	return func(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return next(ctx, path, query)
	}
}

func (d *Dispatcher) newLimiter(maxRequests int, window time.Duration) engine.Limiter {
	throttled := func(budget core.Budget, wait time.Duration) {
		d.recorder.Throttled(wait, budget.Requests)
		d.logger.Debug("fred rate limit wait",
			zap.String("mode", string(d.mode)),
			zap.Int("remaining", budget.Requests),
			zap.Duration("wait", wait),
		)
	}
	if d.mode == engine.ModeAsync {
		limiter := engine.NewAdaptiveLimiter(maxRequests, window)
		limiter.OnThrottle = throttled
		return limiter
	}
	limiter := engine.NewSyncLimiter(maxRequests, window)
	limiter.OnThrottle = throttled
	return limiter
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var status *HTTPStatusError
	var request *RequestError
	var decode *DecodeError
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case core.IsValidationError(err):
		return "invalid"
	case errors.As(err, &status):
		return fmt.Sprintf("http_%d", status.StatusCode)
	case errors.As(err, &request):
		return "transport_error"
	case errors.As(err, &decode):
		return "decode_error"
	default:
		return "error"
	}
}

func fieldKey(key string) zap.Field {
	return zap.String("cache_key", key)
}

type nopRecorder struct{}

func (nopRecorder) Dispatched(string, string) {}
func (nopRecorder) CacheLookup(bool) {}
func (nopRecorder) Retry(string) {}
func (nopRecorder) Throttled(time.Duration, int) {}
