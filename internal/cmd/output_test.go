package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/store"
	"github.com/namelens/fredlens/internal/output"
)

func TestOutputExtension(t *testing.T) {
	assert.Equal(t, "json", outputExtension(output.FormatJSON))
	assert.Equal(t, "yaml", outputExtension(output.FormatYAML))
	assert.Equal(t, "csv", outputExtension(output.FormatCSV))
	assert.Equal(t, "md", outputExtension(output.FormatMarkdown))
	assert.Equal(t, "txt", outputExtension(output.FormatTable))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "unrate", sanitizeFilename("  UNRATE "))
	assert.Equal(t, "gdp-per-capita", sanitizeFilename("GDP per/capita"))
	assert.Equal(t, "output", sanitizeFilename("..//.."))
}

func TestOpenSinkDefaultsToCommandOutput(t *testing.T) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)

	sink, err := openSink(c, "-")
	require.NoError(t, err)
	_, err = sink.writer.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, sink.close())
	assert.Equal(t, "hello", buf.String())
	assert.Equal(t, "-", sink.path)
}

func TestOpenSinkCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	sink, err := openSink(&cobra.Command{}, path)
	require.NoError(t, err)
	_, err = sink.writer.Write([]byte(`{"ok":true}`))
	require.NoError(t, err)
	require.NoError(t, sink.close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestEmitWritesSelectedFormat(t *testing.T) {
	prevFormat, prevPath := outputFormat, outputPath
	t.Cleanup(func() { outputFormat, outputPath = prevFormat, prevPath })
	outputFormat, outputPath = "csv", ""

	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)

	err := emit(c, output.View{
		Header: []string{"id", "title"},
		Rows:   [][]string{{"GDP", "Gross Domestic Product"}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "GDP,Gross Domestic Product")
}

func TestLedgerView(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ledgers := []store.LedgerSummary{
		{Scope: "fred", Count: 3, Oldest: now.Add(-50 * time.Second), Newest: now.Add(-20 * time.Second)},
		{Scope: "maps", Count: 1, Oldest: now.Add(-5 * time.Minute), Newest: now.Add(-5 * time.Minute)},
	}

	v := ledgerView(ledgers, time.Minute, now)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, []string{"fred", "3", "2024-05-01T11:59:10Z", "2024-05-01T11:59:40Z", "in 40s"}, v.Rows[0])
	assert.Equal(t, "now", v.Rows[1][4])
	assert.Empty(t, v.Footer)

	empty := ledgerView(nil, time.Minute, now)
	assert.Empty(t, empty.Rows)
	assert.Equal(t, "no saved ledgers", empty.Footer)
}

func TestWriteRateLimitResetResult(t *testing.T) {
	matched := []store.LedgerSummary{{Scope: "fred", Count: 2}}

	var buf bytes.Buffer
	require.NoError(t, writeRateLimitResetResult(output.FormatJSON, &buf, matched, 2, false))
	assert.Contains(t, buf.String(), `"deleted": 2`)
	assert.Contains(t, buf.String(), `"dry_run": false`)

	buf.Reset()
	require.NoError(t, writeRateLimitResetResult(output.FormatTable, &buf, matched, 0, true))
	assert.True(t, strings.Contains(buf.String(), "Would delete the ledgers of: fred"))
}

func TestEmitObservationsSortsByDate(t *testing.T) {
	prevFormat, prevPath := outputFormat, outputPath
	t.Cleanup(func() { outputFormat, outputPath = prevFormat, prevPath })
	outputFormat, outputPath = "csv", ""

	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)

	obs := &core.Observations{Observations: []core.Observation{
		{Date: core.Date{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}, Value: 3.9},
		{Date: core.Date{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, Value: 3.7},
	}}
	require.NoError(t, emitObservations(c, "UNRATE", obs))

	out := buf.String()
	jan, feb := strings.Index(out, "2024-01-01"), strings.Index(out, "2024-02-01")
	require.True(t, jan >= 0 && feb >= 0, out)
	assert.Less(t, jan, feb)
}

func TestEmitObservationsRejectsUndatedRows(t *testing.T) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)

	err := emitObservations(c, "GDP", &core.Observations{Observations: []core.Observation{{Value: 1}}})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}
