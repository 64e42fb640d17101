package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/output"
)

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Show the request budget and manage saved ledgers",
	Long: `Show the request budget and manage saved ledgers.

With api.persist_ledger enabled, each run saves the timestamps of its
requests per scope (fred, maps) and the next run starts from them.`,
}

var rateLimitShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current budget of each dispatcher",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		s, err := newSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(context.Background()) }()

		states := []output.ScopedState{
			{Scope: scopeFred, RateLimitState: s.fred.State()},
			{Scope: scopeMaps, RateLimitState: s.maps.State()},
		}
		return emit(cmd, output.RateLimits(states))
	},
}

func init() {
	rateLimitCmd.AddCommand(rateLimitShowCmd)
	rateLimitCmd.AddCommand(rateLimitListCmd)
	rateLimitCmd.AddCommand(rateLimitResetCmd)
	rootCmd.AddCommand(rateLimitCmd)
}
