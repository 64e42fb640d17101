package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date layout used across the FRED API.
const DateLayout = "2006-01-02"

// MissingValue is the marker FRED uses for observations without data.
const MissingValue = "."

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: parsed}, nil
}

// String renders the date as YYYY-MM-DD, or empty for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("decode date %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

// Number is a float that decodes from either a JSON number or a numeric
// string. FRED's missing marker and empty strings decode to NaN.
type Number float64

func (n Number) Float() float64 {
	return float64(n)
}

// IsMissing reports whether the value had no data.
func (n Number) IsMissing() bool {
	return math.IsNaN(float64(n))
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.IsMissing() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(n))
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number(math.NaN())
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == MissingValue {
			*n = Number(math.NaN())
			return nil
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("decode number %q: %w", raw, err)
		}
		*n = Number(value)
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("decode number: %w", err)
	}
	*n = Number(value)
	return nil
}

// Page carries the pagination envelope shared by list endpoints.
type Page struct {
	RealtimeStart string `json:"realtime_start,omitempty"`
	RealtimeEnd   string `json:"realtime_end,omitempty"`
	OrderBy       string `json:"order_by,omitempty"`
	SortOrder     string `json:"sort_order,omitempty"`
	Count         int    `json:"count"`
	Offset        int    `json:"offset"`
	Limit         int    `json:"limit"`
}

// Category is a node of the FRED category tree.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent_id"`
	Notes    string `json:"notes,omitempty"`
}

// Series describes an economic data series.
type Series struct {
	ID                      string `json:"id"`
	RealtimeStart           string `json:"realtime_start,omitempty"`
	RealtimeEnd             string `json:"realtime_end,omitempty"`
	Title                   string `json:"title"`
	ObservationStart        Date   `json:"observation_start"`
	ObservationEnd          Date   `json:"observation_end"`
	Frequency               string `json:"frequency"`
	FrequencyShort          string `json:"frequency_short"`
	Units                   string `json:"units"`
	UnitsShort              string `json:"units_short"`
	SeasonalAdjustment      string `json:"seasonal_adjustment"`
	SeasonalAdjustmentShort string `json:"seasonal_adjustment_short"`
	LastUpdated             string `json:"last_updated"`
	Popularity              int    `json:"popularity"`
	GroupPopularity         int    `json:"group_popularity,omitempty"`
	Notes                   string `json:"notes,omitempty"`
}

// SeriesPage is a paginated list of series.
type SeriesPage struct {
	Page
	Series []Series `json:"seriess"`
}

// Observation is a single data point of a series.
type Observation struct {
	RealtimeStart string `json:"realtime_start"`
	RealtimeEnd   string `json:"realtime_end"`
	Date          Date   `json:"date"`
	Value         Number `json:"value"`
}

// Observations is the payload of series/observations.
type Observations struct {
	Page
	ObservationStart string        `json:"observation_start,omitempty"`
	ObservationEnd   string        `json:"observation_end,omitempty"`
	Units            string        `json:"units,omitempty"`
	OutputType       int           `json:"output_type,omitempty"`
	Observations     []Observation `json:"observations"`
}

// Release is a statistical release grouping series.
type Release struct {
	ID            int    `json:"id"`
	RealtimeStart string `json:"realtime_start,omitempty"`
	RealtimeEnd   string `json:"realtime_end,omitempty"`
	Name          string `json:"name"`
	PressRelease  bool   `json:"press_release"`
	Link          string `json:"link,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// ReleasePage is a paginated list of releases.
type ReleasePage struct {
	Page
	Releases []Release `json:"releases"`
}

// ReleaseDate is a publication date of a release.
type ReleaseDate struct {
	ReleaseID   int    `json:"release_id"`
	ReleaseName string `json:"release_name,omitempty"`
	Date        Date   `json:"date"`
}

// ReleaseDatePage is a paginated list of release dates.
type ReleaseDatePage struct {
	Page
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

// Element is a node of a release table.
type Element struct {
	ElementID int       `json:"element_id"`
	ReleaseID int       `json:"release_id"`
	SeriesID  string    `json:"series_id"`
	ParentID  int       `json:"parent_id"`
	Line      string    `json:"line"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Level     string    `json:"level"`
	Children  []Element `json:"children"`
}

// ReleaseTable is the hierarchical table of a release.
type ReleaseTable struct {
	Name      string             `json:"name"`
	ElementID int                `json:"element_id"`
	ReleaseID string             `json:"release_id"`
	Elements  map[string]Element `json:"elements"`
}

// Source is a data provider.
type Source struct {
	ID            int    `json:"id"`
	RealtimeStart string `json:"realtime_start,omitempty"`
	RealtimeEnd   string `json:"realtime_end,omitempty"`
	Name          string `json:"name"`
	Link          string `json:"link,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// SourcePage is a paginated list of sources.
type SourcePage struct {
	Page
	Sources []Source `json:"sources"`
}

// Tag is a FRED tag attached to series.
type Tag struct {
	Name        string `json:"name"`
	GroupID     string `json:"group_id"`
	Notes       string `json:"notes,omitempty"`
	Created     string `json:"created"`
	Popularity  int    `json:"popularity"`
	SeriesCount int    `json:"series_count"`
}

// TagPage is a paginated list of tags.
type TagPage struct {
	Page
	Tags []Tag `json:"tags"`
}

// VintageDates lists the dates on which a series was revised.
type VintageDates struct {
	Page
	VintageDates []Date `json:"vintage_dates"`
}

// Feature is a GeoJSON feature of a shape file.
type Feature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// ShapeFile is the GeoJSON feature collection of a region type.
type ShapeFile struct {
	Type     string    `json:"type"`
	Title    string    `json:"title,omitempty"`
	Features []Feature `json:"features"`
}

// SeriesGroup is the metadata of a regional series group.
type SeriesGroup struct {
	Title       string `json:"title"`
	RegionType  string `json:"region_type"`
	SeriesGroup string `json:"series_group"`
	Season      string `json:"season"`
	Units       string `json:"units"`
	Frequency   string `json:"frequency"`
	MinDate     Date   `json:"min_date"`
	MaxDate     Date   `json:"max_date"`
}

// RegionalValue is a regional observation of a series group.
type RegionalValue struct {
	Region   string `json:"region"`
	Code     string `json:"code"`
	Value    Number `json:"value"`
	SeriesID string `json:"series_id"`
}

// RegionalData is the payload of series/data and regional/data.
type RegionalData struct {
	Title       string                     `json:"title"`
	Region      string                     `json:"region"`
	Seasonality string                     `json:"seasonality"`
	Units       string                     `json:"units"`
	Frequency   string                     `json:"frequency"`
	Data        map[string][]RegionalValue `json:"data"`
}
