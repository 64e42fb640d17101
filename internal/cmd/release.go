package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/fred"
	"github.com/namelens/fredlens/internal/output"
)

var releaseCmd = &cobra.Command{
	Use:     "release",
	Aliases: []string{"releases"},
	Short:   "Browse statistical releases",
}

var (
	releaseListFlags    listFlags
	releaseGetFlags     listFlags
	releaseDatesFlags   listFlags
	releaseDatesEmpty   bool
	releaseSeriesFlags  seriesListFlags
	releaseSourcesFlags listFlags
	releaseTagsFlags    tagFlags
	releaseTableElement int
	releaseTableValues  bool
	releaseTableDate    string
)

func releaseRun(fn func(ctx context.Context, cmd *cobra.Command, s *session, id int) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID("release_id", args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			return fn(ctx, cmd, s, id)
		})
	}
}

var releaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all releases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			page, err := s.client.Releases(ctx, releaseListFlags.list())
			if err != nil {
				return err
			}
			return emit(cmd, output.Releases(page.Releases, page))
		})
	},
}

var releaseGetCmd = &cobra.Command{
	Use:   "get <release_id>",
	Short: "Show a release",
	Args:  cobra.ExactArgs(1),
	RunE: releaseRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		release, err := s.client.Release(ctx, id, releaseGetFlags.realtime())
		if err != nil {
			return err
		}
		return emit(cmd, output.Releases([]core.Release{*release}, release))
	}),
}

var releaseDatesCmd = &cobra.Command{
	Use:   "dates [release_id]",
	Short: "List release dates, of one release or of all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := fred.ReleaseDateOptions{
			Realtime:     releaseDatesFlags.realtime(),
			Paging:       releaseDatesFlags.paging(),
			IncludeEmpty: releaseDatesEmpty,
		}
		if len(args) == 0 {
			return withSession(cmd, nil, func(ctx context.Context, s *session) error {
				page, err := s.client.ReleasesDates(ctx, opts)
				if err != nil {
					return err
				}
				return emit(cmd, output.ReleaseDates(page))
			})
		}
		return releaseRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
			page, err := s.client.ReleaseDates(ctx, id, opts)
			if err != nil {
				return err
			}
			return emit(cmd, output.ReleaseDates(page))
		})(cmd, args)
	},
}

var releaseSeriesCmd = &cobra.Command{
	Use:   "series <release_id>",
	Short: "List the series of a release",
	Args:  cobra.ExactArgs(1),
	RunE: releaseRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		page, err := s.client.ReleaseSeries(ctx, id, releaseSeriesFlags.options())
		if err != nil {
			return err
		}
		return emit(cmd, output.SeriesList(page))
	}),
}

var releaseSourcesCmd = &cobra.Command{
	Use:   "sources <release_id>",
	Short: "List the sources of a release",
	Args:  cobra.ExactArgs(1),
	RunE: releaseRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		sources, err := s.client.ReleaseSources(ctx, id, releaseSourcesFlags.realtime())
		if err != nil {
			return err
		}
		return emit(cmd, output.Sources(sources, sources))
	}),
}

var releaseTagsCmd = &cobra.Command{
	Use:   "tags <release_id>",
	Short: "List the tags of the series in a release",
	Long: `List the tags of the series in a release.

With --tag-names, list the tags related to those tags within the release instead.`,
	Args: cobra.ExactArgs(1),
	RunE: releaseRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		var (
			page *core.TagPage
			err  error
		)
		if related, ok := releaseTagsFlags.related(); ok {
			page, err = s.client.ReleaseRelatedTags(ctx, id, related)
		} else {
			page, err = s.client.ReleaseTags(ctx, id, releaseTagsFlags.tags())
		}
		if err != nil {
			return err
		}
		return emit(cmd, output.Tags(page))
	}),
}

var releaseTablesCmd = &cobra.Command{
	Use:   "tables <release_id>",
	Short: "Show the table tree of a release",
	Args:  cobra.ExactArgs(1),
	RunE: releaseRun(func(ctx context.Context, cmd *cobra.Command, s *session, id int) error {
		table, err := s.client.ReleaseTables(ctx, id, fred.ReleaseTableOptions{
			ElementID:                releaseTableElement,
			IncludeObservationValues: releaseTableValues,
			ObservationDate:          releaseTableDate,
		})
		if err != nil {
			return err
		}
		return emit(cmd, output.ReleaseTable(table))
	}),
}

func init() {
	releaseListFlags.register(releaseListCmd)
	releaseGetFlags.registerRealtime(releaseGetCmd)
	releaseDatesFlags.register(releaseDatesCmd)
	releaseDatesCmd.Flags().BoolVar(&releaseDatesEmpty, "include-empty", false, "include dates with no data yet")
	releaseSeriesFlags.register(releaseSeriesCmd)
	releaseSourcesFlags.registerRealtime(releaseSourcesCmd)
	releaseTagsFlags.register(releaseTagsCmd)
	releaseTablesCmd.Flags().IntVar(&releaseTableElement, "element-id", 0, "root element of the subtree (0 is the whole table)")
	releaseTablesCmd.Flags().BoolVar(&releaseTableValues, "include-values", false, "include observation values")
	releaseTablesCmd.Flags().StringVar(&releaseTableDate, "observation-date", "", "observation date of the values (YYYY-MM-DD)")

	releaseCmd.AddCommand(
		releaseListCmd,
		releaseGetCmd,
		releaseDatesCmd,
		releaseSeriesCmd,
		releaseSourcesCmd,
		releaseTagsCmd,
		releaseTablesCmd,
	)
	rootCmd.AddCommand(releaseCmd)
}
