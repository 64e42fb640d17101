package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSeriesIDsFromArgs(t *testing.T) {
	ids, err := resolveSeriesIDs([]string{"gdp", " UNRATE ", "GDP"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"GDP", "UNRATE"}, ids)
}

func TestResolveSeriesIDsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	content := "# labor\nunrate payems\n\nCPIAUCSL # prices\nUNRATE\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	ids, err := resolveSeriesIDs([]string{"GDP"}, path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"GDP", "UNRATE", "PAYEMS", "CPIAUCSL"}, ids)
}

func TestResolveSeriesIDsFromStdin(t *testing.T) {
	ids, err := resolveSeriesIDs(nil, "-", strings.NewReader("dgs10\nt10y2y\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"DGS10", "T10Y2Y"}, ids)
}

func TestResolveSeriesIDsErrors(t *testing.T) {
	_, err := resolveSeriesIDs(nil, "", nil)
	require.Error(t, err)

	_, err = resolveSeriesIDs(nil, "-", strings.NewReader("# nothing here\n"))
	require.Error(t, err)

	_, err = resolveSeriesIDs(nil, filepath.Join(t.TempDir(), "missing.txt"), nil)
	require.Error(t, err)
}
