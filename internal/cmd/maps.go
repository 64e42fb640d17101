package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core/fred"
	"github.com/namelens/fredlens/internal/output"
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "Query GeoFRED regional data and shapes",
}

var (
	mapsSeriesData fred.SeriesDataOptions
	mapsRegional   fred.RegionalDataOptions
)

var mapsShapesCmd = &cobra.Command{
	Use:   "shapes <shape>",
	Short: "Fetch the GeoJSON shapes of a region type (state, county, msa, ...)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			file, err := s.mapsClient.ShapeFile(ctx, args[0])
			if err != nil {
				return err
			}
			return emit(cmd, output.ShapeFile(args[0], file))
		})
	},
}

var mapsGroupCmd = &cobra.Command{
	Use:   "group <series_id>",
	Short: "Show the regional series group of a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			group, err := s.mapsClient.SeriesGroup(ctx, args[0])
			if err != nil {
				return err
			}
			return emit(cmd, output.SeriesGroup(group))
		})
	},
}

var mapsSeriesDataCmd = &cobra.Command{
	Use:   "series-data <series_id>",
	Short: "Fetch the cross section of the group a series belongs to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			data, err := s.mapsClient.SeriesData(ctx, args[0], mapsSeriesData)
			if err != nil {
				return err
			}
			return emit(cmd, output.Regional(data))
		})
	},
}

var mapsRegionalCmd = &cobra.Command{
	Use:   "regional",
	Short: "Fetch a cross section of a series group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			data, err := s.mapsClient.RegionalData(ctx, mapsRegional)
			if err != nil {
				return err
			}
			return emit(cmd, output.Regional(data))
		})
	},
}

func init() {
	mapsSeriesDataCmd.Flags().StringVar(&mapsSeriesData.Date, "date", "", "observation date (YYYY-MM-DD)")
	mapsSeriesDataCmd.Flags().StringVar(&mapsSeriesData.StartDate, "start-date", "", "first observation date (YYYY-MM-DD)")

	flags := mapsRegionalCmd.Flags()
	flags.StringVar(&mapsRegional.SeriesGroup, "series-group", "", "series group id")
	flags.StringVar(&mapsRegional.RegionType, "region-type", "", "bea, msa, frb, necta, state, country, county or censusregion")
	flags.StringVar(&mapsRegional.Date, "date", "", "observation date (YYYY-MM-DD)")
	flags.StringVar(&mapsRegional.StartDate, "start-date", "", "first observation date (YYYY-MM-DD)")
	flags.StringVar(&mapsRegional.Season, "season", "", "SA, NSA or SSA")
	flags.StringVar(&mapsRegional.Units, "units", "", "units of the group")
	flags.StringVar(&mapsRegional.Frequency, "frequency", "", "frequency of the group")
	flags.StringVar(&mapsRegional.Transformation, "transformation", "", "lin, chg, ch1, pch, pc1, pca, cch, cca or log")
	flags.StringVar(&mapsRegional.AggregationMethod, "aggregation", "", "avg, sum or eop")

	mapsCmd.AddCommand(mapsShapesCmd, mapsGroupCmd, mapsSeriesDataCmd, mapsRegionalCmd)
	rootCmd.AddCommand(mapsCmd)
}
