package fred

import (
	"context"
	"strconv"

	"github.com/namelens/fredlens/internal/core"
)

// Sources lists all data sources.
func (c *Client) Sources(ctx context.Context, opts ListOptions) (*core.SourcePage, error) {
	q, err := opts.values(sourceOrderBy, MaxLimit)
	if err != nil {
		return nil, err
	}
	var out core.SourcePage
	if err := c.get(ctx, "sources", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Source returns one data source.
func (c *Client) Source(ctx context.Context, id int, rt Realtime) (*core.Source, error) {
	if err := checkID("source_id", id); err != nil {
		return nil, err
	}
	if err := rt.validate(); err != nil {
		return nil, err
	}
	q := withID("source_id", id)
	rt.apply(q)

	var out sourceList
	if err := c.get(ctx, "source", q, &out); err != nil {
		return nil, err
	}
	return first(out.Sources, "source")
}

// SourceReleases lists the releases published by a source.
func (c *Client) SourceReleases(ctx context.Context, id int, opts ListOptions) (*core.ReleasePage, error) {
	if err := checkID("source_id", id); err != nil {
		return nil, err
	}
	q, err := opts.values(releaseOrderBy, MaxLimit)
	if err != nil {
		return nil, err
	}
	q.Set("source_id", strconv.Itoa(id))

	var out core.ReleasePage
	if err := c.get(ctx, "source/releases", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
