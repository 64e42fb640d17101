package fred

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/namelens/fredlens/internal/core"
)

// MapsClient calls the GeoFRED API (https://api.stlouisfed.org/geofred). It
// takes its own dispatcher so map traffic is budgeted separately.
type MapsClient struct {
	dispatcher Dispatcher
}

// NewMapsClient wraps a dispatcher configured for the GeoFRED base URL.
func NewMapsClient(d Dispatcher) *MapsClient {
	return &MapsClient{dispatcher: d}
}

// SeriesDataOptions pick the observation date(s) of series/data.
type SeriesDataOptions struct {
	Date      string
	StartDate string
}

func (o SeriesDataOptions) Validate() error {
	if err := checkDate("date", o.Date); err != nil {
		return err
	}
	return checkDate("start_date", o.StartDate)
}

// RegionalDataOptions select a cross section of a series group.
// SeriesGroup, RegionType, Date, Season and Units are required.
type RegionalDataOptions struct {
	SeriesGroup       string
	RegionType        string
	Date              string
	StartDate         string
	Season            string
	Units             string
	Frequency         string
	Transformation    string
	AggregationMethod string
}

func (o RegionalDataOptions) Validate() error {
	required := []struct{ field, value string }{
		{"series_group", o.SeriesGroup},
		{"region_type", o.RegionType},
		{"date", o.Date},
		{"season", o.Season},
		{"units", o.Units},
	}
	for _, item := range required {
		if err := checkText(item.field, item.value); err != nil {
			return err
		}
	}
	if err := checkEnum("region_type", o.RegionType, regionTypes); err != nil {
		return err
	}
	if err := checkEnum("season", o.Season, seasons); err != nil {
		return err
	}
	if err := checkDate("date", o.Date); err != nil {
		return err
	}
	if err := checkDate("start_date", o.StartDate); err != nil {
		return err
	}
	if err := checkEnum("frequency", o.Frequency, frequencies); err != nil {
		return err
	}
	if err := checkEnum("transformation", o.Transformation, units); err != nil {
		return err
	}
	return checkEnum("aggregation_method", o.AggregationMethod, aggregations)
}

// ShapeFile returns the GeoJSON boundaries of a region type.
func (m *MapsClient) ShapeFile(ctx context.Context, shape string) (*core.ShapeFile, error) {
	if err := checkText("shape", shape); err != nil {
		return nil, err
	}
	if err := checkEnum("shape", shape, shapes); err != nil {
		return nil, err
	}
	var out core.ShapeFile
	if err := fetchInto(ctx, m.dispatcher, "shapes/file", withText("shape", shape), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeriesGroup returns the group metadata of a regional series.
func (m *MapsClient) SeriesGroup(ctx context.Context, seriesID string) (*core.SeriesGroup, error) {
	if err := checkText("series_id", seriesID); err != nil {
		return nil, err
	}
	var out struct {
		SeriesGroup json.RawMessage `json:"series_group"`
	}
	if err := fetchInto(ctx, m.dispatcher, "series/group", withText("series_id", seriesID), &out); err != nil {
		return nil, err
	}

	// The group arrives as an object or as a one-element list.
	raw := bytes.TrimSpace(out.SeriesGroup)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("series group of %s: %w", seriesID, ErrNotFound)
	}
	if raw[0] == '[' {
		var groups []core.SeriesGroup
		if err := json.Unmarshal(raw, &groups); err != nil {
			return nil, fmt.Errorf("parse series/group response: %w", err)
		}
		return first(groups, "series group of "+seriesID)
	}
	var group core.SeriesGroup
	if err := json.Unmarshal(raw, &group); err != nil {
		return nil, fmt.Errorf("parse series/group response: %w", err)
	}
	return &group, nil
}

// SeriesData returns the cross section a regional series belongs to.
func (m *MapsClient) SeriesData(ctx context.Context, seriesID string, opts SeriesDataOptions) (*core.RegionalData, error) {
	if err := checkText("series_id", seriesID); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := withText("series_id", seriesID)
	setString(q, "date", opts.Date)
	setString(q, "start_date", opts.StartDate)
	return m.regional(ctx, "series/data", q)
}

// RegionalData returns a series group cross section by region type.
func (m *MapsClient) RegionalData(ctx context.Context, opts RegionalDataOptions) (*core.RegionalData, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	setString(q, "series_group", opts.SeriesGroup)
	setString(q, "region_type", opts.RegionType)
	setString(q, "date", opts.Date)
	setString(q, "start_date", opts.StartDate)
	setString(q, "season", opts.Season)
	setString(q, "units", opts.Units)
	setString(q, "frequency", opts.Frequency)
	setString(q, "transformation", opts.Transformation)
	setString(q, "aggregation_method", opts.AggregationMethod)
	return m.regional(ctx, "regional/data", q)
}

func (m *MapsClient) regional(ctx context.Context, path string, q url.Values) (*core.RegionalData, error) {
	var out struct {
		Meta *core.RegionalData `json:"meta"`
	}
	if err := fetchInto(ctx, m.dispatcher, path, q, &out); err != nil {
		return nil, err
	}
	if out.Meta == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return out.Meta, nil
}
