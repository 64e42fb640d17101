// Package fred maps FRED and GeoFRED endpoints onto typed Go calls. Every
// method validates its parameters before dispatching, so invalid input never
// spends rate-limit budget.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrNotFound is returned when a single-record endpoint answers with an
// empty list.
var ErrNotFound = errors.New("fred: no matching record")

// Dispatcher sends a GET for path and returns the JSON payload.
// *dispatch.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
}

// Client calls the FRED API (https://api.stlouisfed.org/fred).
type Client struct {
	dispatcher Dispatcher
}

// NewClient wraps a dispatcher configured for the FRED base URL.
func NewClient(d Dispatcher) *Client {
	return &Client{dispatcher: d}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return fetchInto(ctx, c.dispatcher, path, query, out)
}

func fetchInto(ctx context.Context, d Dispatcher, path string, query url.Values, out any) error {
	if d == nil {
		return errors.New("fred client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := d.Dispatch(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func first[T any](items []T, what string) (*T, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	item := items[0]
	return &item, nil
}
