package cmd

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core/store"
	"github.com/namelens/fredlens/internal/output"
)

var rateLimitListScope string

var rateLimitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved request ledgers",
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

		db, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		query := store.LedgerQuery{Scope: strings.TrimSpace(rateLimitListScope)}
		query.All = query.Scope == ""

		ledgers, err := db.ListLedgers(ctx, query)
		if err != nil {
			return err
		}
		return emit(cmd, ledgerView(ledgers, cfg.API.Window, time.Now()))
	},
}

// ledgerView lists saved ledgers with the number of entries still inside
// the window.
func ledgerView(ledgers []store.LedgerSummary, window time.Duration, now time.Time) output.View {
	v := output.View{
		Title:  "Saved ledgers",
		Header: []string{"Scope", "Requests", "Oldest", "Newest", "Window clears"},
		Data:   ledgers,
	}
	for _, l := range ledgers {
		clears := "now"
		if until := l.Newest.Add(window).Sub(now); until > 0 {
			clears = "in " + until.Round(time.Second).String()
		}
		v.Rows = append(v.Rows, []string{
			l.Scope,
			strconv.Itoa(l.Count),
			l.Oldest.UTC().Format(time.RFC3339),
			l.Newest.UTC().Format(time.RFC3339),
			clears,
		})
	}
	if len(ledgers) == 0 {
		v.Footer = "no saved ledgers"
	}
	return v
}

func init() {
	rateLimitListCmd.Flags().StringVar(&rateLimitListScope, "scope", "", "only this scope (fred or maps)")
}
