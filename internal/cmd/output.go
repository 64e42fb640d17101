package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/output"
)

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

func outputExtension(format output.Format) string {
	switch format {
	case output.FormatJSON:
		return "json"
	case output.FormatYAML:
		return "yaml"
	case output.FormatCSV:
		return "csv"
	case output.FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

var nonFilename = regexp.MustCompile(`[^a-z0-9._-]+`)

func sanitizeFilename(value string) string {
	clean := strings.ToLower(strings.TrimSpace(value))
	clean = nonFilename.ReplaceAllString(clean, "-")
	clean = strings.Trim(clean, "-.")
	if clean == "" {
		return "output"
	}
	return clean
}

// openSink opens path for writing; empty or "-" is the command's stdout.
func openSink(cmd *cobra.Command, path string) (*outputSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return &outputSink{writer: cmd.OutOrStdout(), close: func() error { return nil }, path: "-"}, nil
	}

	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}

func ensureOutDir(dir string) (string, error) {
	clean := strings.TrimSpace(dir)
	if clean == "" {
		return "", nil
	}
	if err := os.MkdirAll(clean, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return clean, nil
	}
	return abs, nil
}

// emit renders v in the --output-format to --out.
func emit(cmd *cobra.Command, v output.View) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	sink, err := openSink(cmd, outputPath)
	if err != nil {
		return err
	}
	if err := output.Render(sink.writer, format, v); err != nil {
		_ = sink.close()
		return err
	}
	return sink.close()
}

// emitObservations renders obs as a date/value table in the selected format.
func emitObservations(cmd *cobra.Command, seriesID string, obs *core.Observations) error {
	v, err := output.Observations(seriesID, obs)
	if err != nil {
		return err
	}
	return emit(cmd, v)
}
