package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core/fred"
	"github.com/namelens/fredlens/internal/output"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Browse tags and find series by tag",
}

var (
	tagsListFlags    tagFlags
	tagsRelatedFlags tagFlags
	tagsSeriesFlags  tagFlags
)

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			page, err := s.client.Tags(ctx, tagsListFlags.tags())
			if err != nil {
				return err
			}
			return emit(cmd, output.Tags(page))
		})
	},
}

var tagsRelatedCmd = &cobra.Command{
	Use:   "related",
	Short: "List tags related to --tag-names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, _ := tagsRelatedFlags.related()
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			page, err := s.client.RelatedTags(ctx, opts)
			if err != nil {
				return err
			}
			return emit(cmd, output.Tags(page))
		})
	},
}

var tagsSeriesCmd = &cobra.Command{
	Use:   "series",
	Short: "List the series carrying all of --tag-names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := fred.TagSeriesOptions{
			Realtime:        tagsSeriesFlags.realtime(),
			Paging:          tagsSeriesFlags.paging(),
			TagNames:        tagsSeriesFlags.tagNames,
			ExcludeTagNames: tagsSeriesFlags.excludeTagNames,
		}
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			page, err := s.client.TagsSeries(ctx, opts)
			if err != nil {
				return err
			}
			return emit(cmd, output.SeriesList(page))
		})
	},
}

func init() {
	tagsListFlags.register(tagsListCmd)
	tagsRelatedFlags.register(tagsRelatedCmd)
	tagsSeriesFlags.register(tagsSeriesCmd)
	_ = tagsRelatedCmd.MarkFlagRequired("tag-names")
	_ = tagsSeriesCmd.MarkFlagRequired("tag-names")

	tagsCmd.AddCommand(tagsListCmd, tagsRelatedCmd, tagsSeriesCmd)
	rootCmd.AddCommand(tagsCmd)
}
