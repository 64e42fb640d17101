// Package frame converts FRED payloads into column-oriented tables.
package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/namelens/fredlens/internal/core"
)

// SeriesFrame holds one series as parallel date and value columns. Missing
// observations are NaN.
type SeriesFrame struct {
	SeriesID string
	Dates    []time.Time
	Values   []float64
}

// FromObservations builds a frame from observations, sorted by date.
func FromObservations(seriesID string, observations []core.Observation) (*SeriesFrame, error) {
	rows := make([]core.Observation, 0, len(observations))
	for i, obs := range observations {
		if obs.Date.IsZero() {
			return nil, fmt.Errorf("observation %d of %s has no date", i, seriesID)
		}
		rows = append(rows, obs)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date.Time)
	})

	frame := &SeriesFrame{
		SeriesID: seriesID,
		Dates:    make([]time.Time, len(rows)),
		Values:   make([]float64, len(rows)),
	}
	for i, obs := range rows {
		frame.Dates[i] = obs.Date.Time
		frame.Values[i] = obs.Value.Float()
	}
	return frame, nil
}

func (f *SeriesFrame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Dates)
}

// Last returns the most recent non-missing observation.
func (f *SeriesFrame) Last() (time.Time, float64, bool) {
	for i := f.Len() - 1; i >= 0; i-- {
		if !math.IsNaN(f.Values[i]) {
			return f.Dates[i], f.Values[i], true
		}
	}
	return time.Time{}, math.NaN(), false
}

// Slice returns the rows dated within [from, to]. A zero bound is open.
func (f *SeriesFrame) Slice(from, to time.Time) *SeriesFrame {
	out := &SeriesFrame{SeriesID: f.SeriesID}
	for i, date := range f.Dates {
		if !from.IsZero() && date.Before(from) {
			continue
		}
		if !to.IsZero() && date.After(to) {
			continue
		}
		out.Dates = append(out.Dates, date)
		out.Values = append(out.Values, f.Values[i])
	}
	return out
}

// WriteCSV writes a date,<series id> table. Missing values are empty cells.
func (f *SeriesFrame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := f.SeriesID
	if header == "" {
		header = "value"
	}
	if err := cw.Write([]string{"date", header}); err != nil {
		return err
	}
	for i, date := range f.Dates {
		if err := cw.Write([]string{date.Format(core.DateLayout), formatValue(f.Values[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RegionalRow is one region's value on one date.
type RegionalRow struct {
	Date     time.Time   `json:"date"`
	Region   string      `json:"region"`
	Code     string      `json:"code"`
	SeriesID string      `json:"series_id"`
	Value    core.Number `json:"value"`
}

// FromRegionalData flattens a cross section into rows sorted by date then
// region. Dates that do not parse are skipped.
func FromRegionalData(data core.RegionalData) []RegionalRow {
	var rows []RegionalRow
	for key, values := range data.Data {
		date, err := core.ParseDate(key)
		if err != nil {
			continue
		}
		for _, value := range values {
			rows = append(rows, RegionalRow{
				Date:     date.Time,
				Region:   value.Region,
				Code:     value.Code,
				SeriesID: value.SeriesID,
				Value:    value.Value,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Region < rows[j].Region
	})
	return rows
}

// WriteRegionalCSV writes rows as date,region,code,series_id,value.
func WriteRegionalCSV(w io.Writer, rows []RegionalRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "region", "code", "series_id", "value"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.Date.Format(core.DateLayout), row.Region, row.Code, row.SeriesID, formatValue(row.Value.Float())}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
