package fred

import (
	"context"
	"net/url"

	"github.com/namelens/fredlens/internal/core"
)

// Tags lists FRED tags.
func (c *Client) Tags(ctx context.Context, opts TagListOptions) (*core.TagPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	opts.apply(q)

	var out core.TagPage
	if err := c.get(ctx, "tags", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RelatedTags lists tags that co-occur with opts.TagNames.
func (c *Client) RelatedTags(ctx context.Context, opts RelatedTagOptions) (*core.TagPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	opts.apply(q)

	var out core.TagPage
	if err := c.get(ctx, "related_tags", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TagsSeries lists the series carrying every tag in opts.TagNames.
func (c *Client) TagsSeries(ctx context.Context, opts TagSeriesOptions) (*core.SeriesPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	opts.apply(q)

	var out core.SeriesPage
	if err := c.get(ctx, "tags/series", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
