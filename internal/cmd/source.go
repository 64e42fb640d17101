package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/output"
)

var sourceCmd = &cobra.Command{
	Use:     "source",
	Aliases: []string{"sources"},
	Short:   "Browse data sources",
}

var (
	sourceListFlags     listFlags
	sourceGetFlags      listFlags
	sourceReleasesFlags listFlags
)

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			page, err := s.client.Sources(ctx, sourceListFlags.list())
			if err != nil {
				return err
			}
			return emit(cmd, output.Sources(page.Sources, page))
		})
	},
}

var sourceGetCmd = &cobra.Command{
	Use:   "get <source_id>",
	Short: "Show a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("source_id", args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			source, err := s.client.Source(ctx, id, sourceGetFlags.realtime())
			if err != nil {
				return err
			}
			return emit(cmd, output.Sources([]core.Source{*source}, source))
		})
	},
}

var sourceReleasesCmd = &cobra.Command{
	Use:   "releases <source_id>",
	Short: "List the releases of a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("source_id", args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, nil, func(ctx context.Context, s *session) error {
			page, err := s.client.SourceReleases(ctx, id, sourceReleasesFlags.list())
			if err != nil {
				return err
			}
			return emit(cmd, output.Releases(page.Releases, page))
		})
	},
}

func init() {
	sourceListFlags.register(sourceListCmd)
	sourceGetFlags.registerRealtime(sourceGetCmd)
	sourceReleasesFlags.register(sourceReleasesCmd)

	sourceCmd.AddCommand(sourceListCmd, sourceGetCmd, sourceReleasesCmd)
	rootCmd.AddCommand(sourceCmd)
}
