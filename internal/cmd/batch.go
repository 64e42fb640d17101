package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/config"
	"github.com/namelens/fredlens/internal/core/engine"
	"github.com/namelens/fredlens/internal/core/frame"
	"github.com/namelens/fredlens/internal/core/fred"
	"github.com/namelens/fredlens/internal/observability"
	"github.com/namelens/fredlens/internal/output"
)

var (
	batchObsFlags    observationFlags
	batchFile        string
	batchConcurrency int
	batchOutDir      string
)

var batchCmd = &cobra.Command{
	Use:   "batch [series_id...]",
	Short: "Fetch the observations of several series concurrently",
	Long: `Fetch the observations of several series concurrently.

Series ids come from the arguments or from --file (one per line, # starts a
comment, - reads stdin). The dispatcher runs in async mode unless --mode is
given. A failed series is reported in its row and does not stop the others.

With --out-dir, each series is also written to <dir>/<series_id>.csv.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchObsFlags.register(batchCmd)
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "read series ids from file (- for stdin)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent requests (default workers from config)")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "write one CSV per series to this directory")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ids, err := resolveSeriesIDs(args, batchFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	outDir, err := ensureOutDir(batchOutDir)
	if err != nil {
		return err
	}

	modeChanged := cmd.Flags().Changed("mode")
	prepare := func(cfg *config.Config) {
		if !modeChanged {
			cfg.API.Mode = string(engine.ModeAsync)
		}
	}

	return withSession(cmd, prepare, func(ctx context.Context, s *session) error {
		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = s.cfg.Workers
		}

		startedAt := time.Now()
		results, err := s.client.ObservationsBatch(ctx, ids, batchObsFlags.options(), concurrency)
		if err != nil && results == nil {
			return err
		}
		logThroughput(len(ids), concurrency, startedAt)

		if outDir != "" {
			if err := writeBatchFiles(outDir, results); err != nil {
				return err
			}
		}
		if renderErr := emit(cmd, output.Batch(results)); renderErr != nil {
			return renderErr
		}
		return err
	})
}

// writeBatchFiles writes the successful results as date,value CSV files.
func writeBatchFiles(dir string, results []fred.BatchResult) error {
	for _, r := range results {
		if r.Observations == nil {
			continue
		}
		table, err := frame.FromObservations(r.SeriesID, r.Observations.Observations)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, sanitizeFilename(r.SeriesID)+"."+outputExtension(output.FormatCSV))
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := table.WriteCSV(file); err != nil {
			_ = file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

func logThroughput(series, concurrency int, startedAt time.Time) {
	if observability.CLILogger == nil {
		return
	}
	elapsed := time.Since(startedAt)
	observability.CLILogger.Debug("Batch complete",
		zap.Int("series", series),
		zap.Int("concurrency", concurrency),
		zap.Duration("elapsed", elapsed))
}

// resolveSeriesIDs merges positional ids and ids read from path, keeping
// the first occurrence of each.
func resolveSeriesIDs(positional []string, path string, stdin io.Reader) ([]string, error) {
	ids := make([]string, 0, len(positional))
	ids = append(ids, positional...)

	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fromFile, err := readSeriesIDs(trimmed, stdin)
		if err != nil {
			return nil, err
		}
		ids = append(ids, fromFile...)
	}

	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.ToUpper(strings.TrimSpace(raw))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, errors.New("at least one series id is required")
	}
	return out, nil
}

func readSeriesIDs(path string, stdin io.Reader) ([]string, error) {
	reader := stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close() // nolint:errcheck // read-only
		reader = file
	}

	var ids []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		ids = append(ids, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ids, nil
}
