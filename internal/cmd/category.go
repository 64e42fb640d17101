package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/output"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"categories"},
	Short:   "Browse the category tree (0 is the root)",
}

var (
	categoryChildrenFlags listFlags
	categoryRelatedFlags  listFlags
	categorySeriesFlags   seriesListFlags
	categoryTagsFlags     tagFlags
)

// categoryRun parses the category id argument before opening a session.
func categoryRun(fn func(ctx context.Context, cmd *cobra.Command, s *session, id int) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID("category_id", args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			return fn(ctx, cmd, s, id)
		})
	}
}

var categoryGetCmd = &cobra.Command{
	Use:   "get <category_id>",
	Short: "Show a category",
	Args:  cobra.ExactArgs(1),
	RunE: categoryRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		category, err := s.client.Category(ctx, id)
		if err != nil {
			return err
		}
		return emit(cmd, output.Categories([]core.Category{*category}))
	}),
}

var categoryChildrenCmd = &cobra.Command{
	Use:   "children <category_id>",
	Short: "List the child categories",
	Args:  cobra.ExactArgs(1),
	RunE: categoryRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		children, err := s.client.CategoryChildren(ctx, id, categoryChildrenFlags.realtime())
		if err != nil {
			return err
		}
		return emit(cmd, output.Categories(children))
	}),
}

var categoryRelatedCmd = &cobra.Command{
	Use:   "related <category_id>",
	Short: "List categories related to a category",
	Args:  cobra.ExactArgs(1),
	RunE: categoryRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		related, err := s.client.CategoryRelated(ctx, id, categoryRelatedFlags.realtime())
		if err != nil {
			return err
		}
		return emit(cmd, output.Categories(related))
	}),
}

var categorySeriesCmd = &cobra.Command{
	Use:   "series <category_id>",
	Short: "List the series in a category",
	Args:  cobra.ExactArgs(1),
	RunE: categoryRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		page, err := s.client.CategorySeries(ctx, id, categorySeriesFlags.options())
		if err != nil {
			return err
		}
		return emit(cmd, output.SeriesList(page))
	}),
}

var categoryTagsCmd = &cobra.Command{
	Use:   "tags <category_id>",
	Short: "List the tags of the series in a category",
	Long: `List the tags of the series in a category.

With --tag-names, list the tags related to those tags within the category instead.`,
	Args: cobra.ExactArgs(1),
	RunE: categoryRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		var (
			page *core.TagPage
			err  error
		)
		if related, ok := categoryTagsFlags.related(); ok {
			page, err = s.client.CategoryRelatedTags(ctx, id, related)
		} else {
			page, err = s.client.CategoryTags(ctx, id, categoryTagsFlags.tags())
		}
		if err != nil {
			return err
		}
		return emit(cmd, output.Tags(page))
	}),
}

func init() {
	categoryChildrenFlags.registerRealtime(categoryChildrenCmd)
	categoryRelatedFlags.registerRealtime(categoryRelatedCmd)
	categorySeriesFlags.register(categorySeriesCmd)
	categoryTagsFlags.register(categoryTagsCmd)

	categoryCmd.AddCommand(categoryGetCmd, categoryChildrenCmd, categoryRelatedCmd, categorySeriesCmd, categoryTagsCmd)
	rootCmd.AddCommand(categoryCmd)
}
