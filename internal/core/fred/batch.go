package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/dispatch"
	"github.com/namelens/fredlens/internal/core/engine"
)

// DefaultBatchConcurrency bounds ObservationsBatch when no limit is given.
const DefaultBatchConcurrency = 4

// AsyncDispatcher is a Dispatcher that can run requests on its own
// goroutines. *dispatch.Dispatcher satisfies it.
type AsyncDispatcher interface {
	Dispatcher
	DispatchAsync(ctx context.Context, path string, query url.Values) <-chan dispatch.Result
	Mode() engine.Mode
}

// BatchResult is the outcome for one series of a batch.
type BatchResult struct {
	SeriesID     string             `json:"series_id"`
	Observations *core.Observations `json:"observations,omitempty"`
	Error        string             `json:"error,omitempty"`

	Err error `json:"-"`
}

// ObservationsBatch fetches the observations of several series concurrently,
// at most concurrency at a time. Results keep the order of ids. Parameters
// are validated once, before anything is sent; a failed series is reported
// in its result and does not stop the others.
func (c *Client) ObservationsBatch(ctx context.Context, ids []string, opts ObservationOptions, concurrency int) ([]BatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(ids) == 0 {
		return nil, core.NewValidationError("series_id", "at least one series is required")
	}
	for _, id := range ids {
		if err := checkText("series_id", id); err != nil {
			return nil, err
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]BatchResult, len(ids))
	if ad, ok := c.dispatcher.(AsyncDispatcher); ok && ad.Mode() == engine.ModeAsync {
		c.observationsAsync(ctx, ad, ids, opts, concurrency, results)
		return results, ctx.Err()
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, id := range ids {
		id = strings.TrimSpace(id)
		results[i].SeriesID = id
		g.Go(func() error {
			obs, err := c.SeriesObservations(ctx, id, opts)
			if err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}
			results[i].Observations = obs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// observationsAsync keeps at most concurrency DispatchAsync calls
// outstanding and collects them in id order.
func (c *Client) observationsAsync(ctx context.Context, d AsyncDispatcher, ids []string, opts ObservationOptions, concurrency int, results []BatchResult) {
	pending := make([]<-chan dispatch.Result, len(ids))
	collect := func(i int) {
		res := <-pending[i]
		err := res.Err
		if err == nil {
			var obs core.Observations
			if err = json.Unmarshal(res.Payload, &obs); err == nil {
				results[i].Observations = &obs
				return
			}
			err = fmt.Errorf("parse series/observations response: %w", err)
		}
		results[i].Err = err
		results[i].Error = err.Error()
	}

	for i, id := range ids {
		if i >= concurrency {
			collect(i - concurrency)
		}
		id = strings.TrimSpace(id)
		results[i].SeriesID = id
		q := withText("series_id", id)
		opts.apply(q)
		pending[i] = d.DispatchAsync(ctx, "series/observations", q)
	}
	for i := max(0, len(ids)-concurrency); i < len(ids); i++ {
		collect(i)
	}
}
