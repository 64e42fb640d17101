package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core/store"
	"github.com/namelens/fredlens/internal/output"
)

var (
	rateLimitResetAll    bool
	rateLimitResetScope  string
	rateLimitResetYes    bool
	rateLimitResetDryRun bool
)

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete saved request ledgers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		query := store.LedgerQuery{
			All:   rateLimitResetAll,
			Scope: strings.TrimSpace(rateLimitResetScope),
		}
		if err := query.Validate(); err != nil {
			return err
		}
		if query.All && !rateLimitResetYes && !rateLimitResetDryRun {
			return errors.New("--all requires --yes (or use --dry-run)")
		}

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

		matched, err := db.ListLedgers(ctx, query)
		if err != nil {
			return err
		}

		sink, err := openSink(cmd, outputPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if rateLimitResetDryRun {
			return writeRateLimitResetResult(format, sink.writer, matched, 0, true)
		}
		deleted, err := db.ResetLedgers(ctx, query)
		if err != nil {
			return err
		}
		return writeRateLimitResetResult(format, sink.writer, matched, deleted, false)
	},
}

func writeRateLimitResetResult(format output.Format, w io.Writer, matched []store.LedgerSummary, deleted int64, dryRun bool) error {
	scopes := make([]string, 0, len(matched))
	for _, l := range matched {
		scopes = append(scopes, l.Scope)
	}

	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(map[string]any{
			"scopes":  scopes,
			"deleted": deleted,
			"dry_run": dryRun,
		}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	lines := []string{"Rate limit reset", ""}
	switch {
	case len(scopes) == 0:
		lines = append(lines, "(no saved ledgers matched)")
	case dryRun:
		lines = append(lines, fmt.Sprintf("Would delete the ledgers of: %s", strings.Join(scopes, ", ")))
	default:
		lines = append(lines, fmt.Sprintf("Deleted %d timestamp(s) from: %s", deleted, strings.Join(scopes, ", ")))
	}
	_, err := fmt.Fprint(w, ascii.DrawBox(strings.Join(lines, "\n"), 0))
	return err
}

func init() {
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetAll, "all", false, "reset every scope")
	rateLimitResetCmd.Flags().StringVar(&rateLimitResetScope, "scope", "", "reset one scope (fred or maps)")
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetYes, "yes", false, "confirm destructive reset")
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetDryRun, "dry-run", false, "show what would be deleted")
}
