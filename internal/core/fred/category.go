package fred

import (
	"context"

	"github.com/namelens/fredlens/internal/core"
)

type categoryList struct {
	Categories []core.Category `json:"categories"`
}

// RootCategoryID is the top of the category tree.
const RootCategoryID = 0

// Category returns one category.
func (c *Client) Category(ctx context.Context, id int) (*core.Category, error) {
	if err := checkID("category_id", id); err != nil {
		return nil, err
	}
	var out categoryList
	if err := c.get(ctx, "category", withID("category_id", id), &out); err != nil {
		return nil, err
	}
	return first(out.Categories, "category")
}

// CategoryChildren lists the direct children of a category.
func (c *Client) CategoryChildren(ctx context.Context, id int, rt Realtime) ([]core.Category, error) {
	return c.categories(ctx, "category/children", id, rt)
}

// CategoryRelated lists categories linked to a category outside the tree.
func (c *Client) CategoryRelated(ctx context.Context, id int, rt Realtime) ([]core.Category, error) {
	return c.categories(ctx, "category/related", id, rt)
}

func (c *Client) categories(ctx context.Context, path string, id int, rt Realtime) ([]core.Category, error) {
	if err := checkID("category_id", id); err != nil {
		return nil, err
	}
	if err := rt.validate(); err != nil {
		return nil, err
	}
	q := withID("category_id", id)
	rt.apply(q)

	var out categoryList
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// CategorySeries lists the series in a category.
func (c *Client) CategorySeries(ctx context.Context, id int, opts SeriesListOptions) (*core.SeriesPage, error) {
	if err := checkID("category_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withID("category_id", id)
	opts.apply(q)

	var out core.SeriesPage
	if err := c.get(ctx, "category/series", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CategoryTags lists the tags of the series in a category.
func (c *Client) CategoryTags(ctx context.Context, id int, opts TagListOptions) (*core.TagPage, error) {
	if err := checkID("category_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withID("category_id", id)
	opts.apply(q)

	var out core.TagPage
	if err := c.get(ctx, "category/tags", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CategoryRelatedTags lists tags that co-occur with opts.TagNames in a
// category.
func (c *Client) CategoryRelatedTags(ctx context.Context, id int, opts RelatedTagOptions) (*core.TagPage, error) {
	if err := checkID("category_id", id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withID("category_id", id)
	opts.apply(q)

	var out core.TagPage
	if err := c.get(ctx, "category/related_tags", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
