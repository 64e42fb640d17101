package fred

import (
	"context"
	"net/url"

	"github.com/namelens/fredlens/internal/core"
)

type releaseList struct {
	Releases []core.Release `json:"releases"`
}

type sourceList struct {
	Sources []core.Source `json:"sources"`
}

// Releases lists all releases.
func (c *Client) Releases(ctx context.Context, opts ListOptions) (*core.ReleasePage, error) {
	q, err := opts.values(releaseOrderBy, MaxLimit)
	if err != nil {
		return nil, err
	}
	var out core.ReleasePage
	if err := c.get(ctx, "releases", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReleasesDates lists release dates across all releases.
func (c *Client) ReleasesDates(ctx context.Context, opts ReleaseDateOptions) (*core.ReleaseDatePage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	opts.apply(q)

	var out core.ReleaseDatePage
	if err := c.get(ctx, "releases/dates", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Release returns one release.
func (c *Client) Release(ctx context.Context, id int, rt Realtime) (*core.Release, error) {
	q, err := releaseQuery(id, rt)
	if err != nil {
		return nil, err
	}
	var out releaseList
	if err := c.get(ctx, "release", q, &out); err != nil {
		return nil, err
	}
	return first(out.Releases, "release")
}

// ReleaseDates lists the publication dates of a release.
func (c *Client) ReleaseDates(ctx context.Context, id int, opts ReleaseDateOptions) (*core.ReleaseDatePage, error) {
	if err := checkID("release_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkEnum("order_by", opts.OrderBy, []string{"release_date"}); err != nil {
		return nil, err
	}
	q := withID("release_id", id)
	opts.apply(q)

	var out core.ReleaseDatePage
	if err := c.get(ctx, "release/dates", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReleaseSeries lists the series of a release.
func (c *Client) ReleaseSeries(ctx context.Context, id int, opts SeriesListOptions) (*core.SeriesPage, error) {
	if err := checkID("release_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withID("release_id", id)
	opts.apply(q)

	var out core.SeriesPage
	if err := c.get(ctx, "release/series", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReleaseSources lists the sources of a release.
func (c *Client) ReleaseSources(ctx context.Context, id int, rt Realtime) ([]core.Source, error) {
	q, err := releaseQuery(id, rt)
	if err != nil {
		return nil, err
	}
	var out sourceList
	if err := c.get(ctx, "release/sources", q, &out); err != nil {
		return nil, err
	}
	return out.Sources, nil
}

// ReleaseTags lists the tags of the series in a release.
func (c *Client) ReleaseTags(ctx context.Context, id int, opts TagListOptions) (*core.TagPage, error) {
	if err := checkID("release_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withID("release_id", id)
	opts.apply(q)

	var out core.TagPage
	if err := c.get(ctx, "release/tags", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReleaseRelatedTags lists tags that co-occur with opts.TagNames in a release.
func (c *Client) ReleaseRelatedTags(ctx context.Context, id int, opts RelatedTagOptions) (*core.TagPage, error) {
	if err := checkID("release_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withID("release_id", id)
	opts.apply(q)

	var out core.TagPage
	if err := c.get(ctx, "release/related_tags", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReleaseTables returns the element tree of a release table.
func (c *Client) ReleaseTables(ctx context.Context, id int, opts ReleaseTableOptions) (*core.ReleaseTable, error) {
	if err := checkID("release_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withID("release_id", id)
	opts.apply(q)

	var out core.ReleaseTable
	if err := c.get(ctx, "release/tables", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func releaseQuery(id int, rt Realtime) (url.Values, error) {
	if err := checkID("release_id", id); err != nil {
		return nil, err
	}
	if err := rt.validate(); err != nil {
		return nil, err
	}
	q := withID("release_id", id)
	rt.apply(q)
	return q, nil
}
