package output

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/fred"
)

func mustDate(t *testing.T, value string) core.Date {
	t.Helper()
	d, err := core.ParseDate(value)
	require.NoError(t, err)
	return d
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatTable,
		"table":    FormatTable,
		"JSON":     FormatJSON,
		"yml":      FormatYAML,
		"csv":      FormatCSV,
		"markdown": FormatMarkdown,
	}
	for input, want := range cases {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestRenderSeriesDetail(t *testing.T) {
	series := &core.Series{
		ID:               "GNPCA",
		Title:            "Real Gross National Product",
		Frequency:        "Annual",
		ObservationStart: mustDate(t, "1929-01-01"),
		ObservationEnd:   mustDate(t, "2024-01-01"),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, SeriesDetail(series)))
	assert.Contains(t, buf.String(), "Real Gross National Product")
	assert.Contains(t, buf.String(), "1929-01-01 to 2024-01-01")

	buf.Reset()
	require.NoError(t, Render(&buf, FormatJSON, SeriesDetail(series)))
	assert.Contains(t, buf.String(), `"observation_start": "1929-01-01"`)
}

func TestRenderObservationsAsCSVAndYAML(t *testing.T) {
	obs := &core.Observations{Observations: []core.Observation{
		{Date: mustDate(t, "2024-02-01"), Value: core.Number(math.NaN())},
		{Date: mustDate(t, "2024-01-01"), Value: 3.7},
	}}
	view, err := Observations("UNRATE", obs)
	require.NoError(t, err)
	assert.Equal(t, "latest 2024-01-01 = 3.7", view.Footer)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatCSV, view))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.EqualFold("date,UNRATE", lines[0]), lines[0])
	assert.Equal(t, "2024-01-01,3.7", lines[1])

	buf.Reset()
	require.NoError(t, Render(&buf, FormatYAML, view))
	assert.Contains(t, buf.String(), "observations:")
	assert.Contains(t, buf.String(), "date: \"2024-01-01\"")
	assert.NotContains(t, buf.String(), "{")
}

func TestRenderMarkdown(t *testing.T) {
	view := Categories([]core.Category{{ID: 32991, Name: "Money, Banking, & Finance"}})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatMarkdown, view))
	assert.Contains(t, buf.String(), "| 32991 |")
}

func TestBatchView(t *testing.T) {
	results := []fred.BatchResult{
		{SeriesID: "GDP", Observations: &core.Observations{Observations: []core.Observation{
			{Date: mustDate(t, "2024-01-01"), Value: 27000},
		}}},
		{SeriesID: "NOPE", Error: "Bad Request", Err: errors.New("Bad Request")},
	}

	view := Batch(results)
	assert.Equal(t, "1/2 ok", view.Footer)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, []string{"GDP", "1", "2024-01-01 27000", ""}, view.Rows[0])
	assert.Equal(t, "Bad Request", view.Rows[1][3])
}

func TestPageFooter(t *testing.T) {
	assert.Empty(t, pageFooter(core.Page{Count: 2}, 2))
	assert.Equal(t, "11-20 of 45", pageFooter(core.Page{Count: 45, Offset: 10}, 10))
}

func TestReleaseTableView(t *testing.T) {
	table := &core.ReleaseTable{
		Name: "Personal Income and Outlays",
		Elements: map[string]core.Element{
			"12887": {ElementID: 12887, Name: "Personal income", SeriesID: "PI", Children: []core.Element{
				{ElementID: 12888, Name: "Compensation of employees", SeriesID: "W209RC1"},
			}},
			"12886": {ElementID: 12886, Name: "Table 1"},
		},
	}

	view := ReleaseTable(table)
	require.Len(t, view.Rows, 3)
	assert.Equal(t, []string{"12886", "", "Table 1"}, view.Rows[0])
	assert.Equal(t, []string{"12888", "W209RC1", "  Compensation of employees"}, view.Rows[2])
}
