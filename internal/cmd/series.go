package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/fred"
	"github.com/namelens/fredlens/internal/output"
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Look up economic data series",
}

var (
	seriesGetFlags        listFlags
	seriesObsFlags        observationFlags
	seriesSearchFlags     seriesListFlags
	seriesSearchType      string
	seriesSearchTagsFlags tagFlags
	seriesCategoriesFlags listFlags
	seriesReleaseFlags    listFlags
	seriesTagsFlags       tagFlags
	seriesVintageFlags    listFlags
	seriesUpdateFlags     listFlags
	seriesUpdateFilter    string
	seriesUpdateStart     string
	seriesUpdateEnd       string
)

var seriesGetCmd = &cobra.Command{
	Use:   "get <series_id>",
	Short: "Show a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			series, err := s.client.Series(ctx, args[0], seriesGetFlags.realtime())
			if err != nil {
				return err
			}
			return emit(cmd, output.SeriesDetail(series))
		})
	},
}

var seriesObservationsCmd = &cobra.Command{
	Use:     "observations <series_id>",
	Aliases: []string{"obs"},
	Short:   "List the observations of a series",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			obs, err := s.client.SeriesObservations(ctx, args[0], seriesObsFlags.options())
			if err != nil {
				return err
			}
			return emitObservations(cmd, args[0], obs)
		})
	},
}

var seriesSearchCmd = &cobra.Command{
	Use:   "search <text>...",
	Short: "Search series by words or by series id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := fred.SearchOptions{SeriesListOptions: seriesSearchFlags.options(), SearchType: seriesSearchType}
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			page, err := s.client.SeriesSearch(ctx, strings.Join(args, " "), opts)
			if err != nil {
				return err
			}
			return emit(cmd, output.SeriesList(page))
		})
	},
}

var seriesSearchTagsCmd = &cobra.Command{
	Use:   "search-tags <text>...",
	Short: "List the tags of the series matching a search",
	Long: `List the tags of the series matching a search.

With --tag-names, list the tags related to those tags within the search instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			var (
				page *core.TagPage
				err  error
			)
			if related, ok := seriesSearchTagsFlags.related(); ok {
				page, err = s.client.SeriesSearchRelatedTags(ctx, text, related)
			} else {
				page, err = s.client.SeriesSearchTags(ctx, text, seriesSearchTagsFlags.tags())
			}
			if err != nil {
				return err
			}
			return emit(cmd, output.Tags(page))
		})
	},
}

var seriesCategoriesCmd = &cobra.Command{
	Use:   "categories <series_id>",
	Short: "List the categories of a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			categories, err := s.client.SeriesCategories(ctx, args[0], seriesCategoriesFlags.realtime())
			if err != nil {
				return err
			}
			return emit(cmd, output.Categories(categories))
		})
	},
}

var seriesReleaseCmd = &cobra.Command{
	Use:   "release <series_id>",
	Short: "Show the release of a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			release, err := s.client.SeriesRelease(ctx, args[0], seriesReleaseFlags.realtime())
			if err != nil {
				return err
			}
			return emit(cmd, output.Releases([]core.Release{*release}, release))
		})
	},
}

var seriesTagsCmd = &cobra.Command{
	Use:   "tags <series_id>",
	Short: "List the tags of a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			page, err := s.client.SeriesTags(ctx, args[0], seriesTagsFlags.tags())
			if err != nil {
				return err
			}
			return emit(cmd, output.Tags(page))
		})
	},
}

var seriesVintagesCmd = &cobra.Command{
	Use:   "vintages <series_id>",
	Short: "List the dates a series was revised or released",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			vintages, err := s.client.SeriesVintageDates(ctx, args[0], seriesVintageFlags.list())
			if err != nil {
				return err
			}
			return emit(cmd, output.VintageDates(args[0], vintages))
		})
	},
}

var seriesUpdatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "List recently updated series",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := fred.SeriesUpdateOptions{
			Realtime:    seriesUpdateFlags.realtime(),
			Limit:       seriesUpdateFlags.limit,
			Offset:      seriesUpdateFlags.offset,
			FilterValue: seriesUpdateFilter,
			StartTime:   seriesUpdateStart,
			EndTime:     seriesUpdateEnd,
		}
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			page, err := s.client.SeriesUpdates(ctx, opts)
			if err != nil {
				return err
			}
			return emit(cmd, output.SeriesList(page))
		})
	},
}

func init() {
	seriesGetFlags.registerRealtime(seriesGetCmd)
	seriesObsFlags.register(seriesObservationsCmd)
	seriesSearchFlags.register(seriesSearchCmd)
	seriesSearchCmd.Flags().StringVar(&seriesSearchType, "search-type", "", "full_text or series_id")
	seriesSearchTagsFlags.register(seriesSearchTagsCmd)
	seriesCategoriesFlags.registerRealtime(seriesCategoriesCmd)
	seriesReleaseFlags.registerRealtime(seriesReleaseCmd)
	seriesTagsFlags.register(seriesTagsCmd)
	seriesVintageFlags.register(seriesVintagesCmd)

	seriesUpdateFlags.registerRealtime(seriesUpdatesCmd)
	seriesUpdatesCmd.Flags().IntVar(&seriesUpdateFlags.limit, "limit", 0, "maximum number of results")
	seriesUpdatesCmd.Flags().IntVar(&seriesUpdateFlags.offset, "offset", 0, "result offset")
	seriesUpdatesCmd.Flags().StringVar(&seriesUpdateFilter, "filter", "", "macro, regional or all")
	seriesUpdatesCmd.Flags().StringVar(&seriesUpdateStart, "start-time", "", "start of the update window (YYYYMMDDHhmm)")
	seriesUpdatesCmd.Flags().StringVar(&seriesUpdateEnd, "end-time", "", "end of the update window (YYYYMMDDHhmm)")

	seriesCmd.AddCommand(
		seriesGetCmd,
		seriesObservationsCmd,
		seriesSearchCmd,
		seriesSearchTagsCmd,
		seriesCategoriesCmd,
		seriesReleaseCmd,
		seriesTagsCmd,
		seriesVintagesCmd,
		seriesUpdatesCmd,
	)
	rootCmd.AddCommand(seriesCmd)
}
