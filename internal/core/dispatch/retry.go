package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/engine"
)

const (
	// DefaultAttempts is the total number of tries for one dispatch.
	DefaultAttempts = 3
	// DefaultRetryWait is the fixed pause between tries.
	DefaultRetryWait = time.Second
)

// RetryPolicy bounds how a failed dispatch is repeated.
type RetryPolicy struct {
	Attempts int
	Wait     time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}
	if p.Wait < 0 {
		p.Wait = 0
	}
	if p.Wait == 0 {
		p.Wait = DefaultRetryWait
	}
	return p
}

// retryable reports whether err warrants another attempt. Everything is
// retried except cancellation and caller mistakes.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return !core.IsValidationError(err)
}

func (d *Dispatcher) retried(next call) call {
	policy := d.retry
	return func(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
		var last error
		for attempt := 1; attempt <= policy.Attempts; attempt++ {
			payload, err := next(ctx, path, query)
			if err == nil {
				return payload, nil
			}
			if !retryable(ctx, err) {
				return nil, err
			}
			last = err
			if attempt == policy.Attempts {
				break
			}

			d.recorder.Retry(path)
			d.logger.Warn("fred request failed, retrying",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", policy.Attempts),
				zap.Duration("wait", policy.Wait),
				zap.Error(err),
			)
			if err := d.sleep(ctx, policy.Wait); err != nil {
				return nil, err
			}
		}
		return nil, &RetryError{Attempts: policy.Attempts, Err: last}
	}
}

func (d *Dispatcher) sleep(ctx context.Context, wait time.Duration) error {
	if d.sleepFn != nil {
		return d.sleepFn(ctx, wait)
	}
	return engine.SleepContext(ctx, wait)
}
