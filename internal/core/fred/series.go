package fred

import (
	"context"
	"net/url"

	"github.com/namelens/fredlens/internal/core"
)

// Series returns the metadata of one series.
func (c *Client) Series(ctx context.Context, id string, rt Realtime) (*core.Series, error) {
	q, err := seriesQuery(id, rt)
	if err != nil {
		return nil, err
	}
	var out core.SeriesPage
	if err := c.get(ctx, "series", q, &out); err != nil {
		return nil, err
	}
	return first(out.Series, "series "+id)
}

// SeriesCategories lists the categories a series belongs to.
func (c *Client) SeriesCategories(ctx context.Context, id string, rt Realtime) ([]core.Category, error) {
	q, err := seriesQuery(id, rt)
	if err != nil {
		return nil, err
	}
	var out categoryList
	if err := c.get(ctx, "series/categories", q, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// SeriesObservations returns the data points of a series.
func (c *Client) SeriesObservations(ctx context.Context, id string, opts ObservationOptions) (*core.Observations, error) {
	if err := checkText("series_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withText("series_id", id)
	opts.apply(q)

	var out core.Observations
	if err := c.get(ctx, "series/observations", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeriesRelease returns the release a series belongs to.
func (c *Client) SeriesRelease(ctx context.Context, id string, rt Realtime) (*core.Release, error) {
	q, err := seriesQuery(id, rt)
	if err != nil {
		return nil, err
	}
	var out releaseList
	if err := c.get(ctx, "series/release", q, &out); err != nil {
		return nil, err
	}
	return first(out.Releases, "release of series "+id)
}

// SeriesSearch finds series by keywords.
func (c *Client) SeriesSearch(ctx context.Context, text string, opts SearchOptions) (*core.SeriesPage, error) {
	if err := checkText("search_text", text); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withText("search_text", text)
	opts.apply(q)

	var out core.SeriesPage
	if err := c.get(ctx, "series/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeriesSearchTags lists the tags of the series matching a search.
// opts.SearchText narrows the tags themselves.
func (c *Client) SeriesSearchTags(ctx context.Context, text string, opts TagListOptions) (*core.TagPage, error) {
	if err := checkText("series_search_text", text); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withText("series_search_text", text)
	setString(q, "tag_search_text", opts.SearchText)
	opts.SearchText = ""
	opts.apply(q)

	var out core.TagPage
	if err := c.get(ctx, "series/search/tags", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeriesSearchRelatedTags lists tags related to opts.TagNames among the
// series matching a search.
func (c *Client) SeriesSearchRelatedTags(ctx context.Context, text string, opts RelatedTagOptions) (*core.TagPage, error) {
	if err := checkText("series_search_text", text); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withText("series_search_text", text)
	setString(q, "tag_search_text", opts.SearchText)
	opts.SearchText = ""
	opts.apply(q)

	var out core.TagPage
	if err := c.get(ctx, "series/search/related_tags", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeriesTags lists the tags of a series.
func (c *Client) SeriesTags(ctx context.Context, id string, opts TagListOptions) (*core.TagPage, error) {
	if err := checkText("series_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withText("series_id", id)
	opts.Realtime.apply(q)
	setString(q, "order_by", opts.OrderBy)
	setString(q, "sort_order", opts.SortOrder)

	var out core.TagPage
	if err := c.get(ctx, "series/tags", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeriesUpdates lists series sorted by when they were last updated.
func (c *Client) SeriesUpdates(ctx context.Context, opts SeriesUpdateOptions) (*core.SeriesPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	opts.apply(q)

	var out core.SeriesPage
	if err := c.get(ctx, "series/updates", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeriesVintageDates lists the dates a series was revised on.
func (c *Client) SeriesVintageDates(ctx context.Context, id string, opts ListOptions) (*core.VintageDates, error) {
	if err := checkText("series_id", id); err != nil {
		return nil, err
	}
	q, err := opts.values(nil, MaxDateLimit)
	if err != nil {
		return nil, err
	}
	setString(q, "series_id", id)

	var out core.VintageDates
	if err := c.get(ctx, "series/vintagedates", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func seriesQuery(id string, rt Realtime) (url.Values, error) {
	if err := checkText("series_id", id); err != nil {
		return nil, err
	}
	if err := rt.validate(); err != nil {
		return nil, err
	}
	q := withText("series_id", id)
	rt.apply(q)
	return q, nil
}
