package fred

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/fredlens/internal/core"
)

func TestSeriesGroupAcceptsListOrObject(t *testing.T) {
	for name, payload := range map[string]string{
		"list":   `{"series_group":[{"title":"All Employees: Total Private","region_type":"state","series_group":"1223","season":"NSA","units":"Thousands of Persons","frequency":"a","min_date":"1990-01-01","max_date":"2024-01-01"}]}`,
		"object": `{"series_group":{"title":"All Employees: Total Private","region_type":"state","series_group":"1223","season":"NSA","units":"Thousands of Persons","frequency":"a","min_date":"1990-01-01","max_date":"2024-01-01"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			stub := &stubDispatcher{payloads: map[string]string{"series/group": payload}}
			maps := NewMapsClient(stub)

			group, err := maps.SeriesGroup(context.Background(), "SMU56000000500000001")
			require.NoError(t, err)
			assert.Equal(t, "1223", group.SeriesGroup)
			assert.Equal(t, "state", group.RegionType)
			assert.Equal(t, "2024-01-01", group.MaxDate.String())
		})
	}
}

func TestSeriesGroupMissing(t *testing.T) {
	maps := NewMapsClient(&stubDispatcher{payloads: map[string]string{"series/group": `{}`}})

	_, err := maps.SeriesGroup(context.Background(), "WIPCPI")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegionalData(t *testing.T) {
	stub := &stubDispatcher{payloads: map[string]string{
		"regional/data": `{"meta":{
			"title":"Per Capita Personal Income by State (Dollars)",
			"region":"state","seasonality":"Not Seasonally Adjusted",
			"units":"Dollars","frequency":"Annual",
			"data":{"2013-01-01":[
				{"region":"Alabama","code":"01","value":"36481","series_id":"ALPCPI"},
				{"region":"Alaska","code":"02","value":50150,"series_id":"AKPCPI"}
			]}
		}}`,
	}}
	maps := NewMapsClient(stub)

	data, err := maps.RegionalData(context.Background(), RegionalDataOptions{
		SeriesGroup: "882",
		RegionType:  "state",
		Date:        "2013-01-01",
		Season:      "NSA",
		Units:       "Dollars",
	})
	require.NoError(t, err)
	require.Len(t, data.Data["2013-01-01"], 2)
	assert.InDelta(t, 50150, data.Data["2013-01-01"][1].Value.Float(), 1e-9)

	call := stub.last(t)
	assert.Equal(t, "regional/data", call.Path)
	assert.Equal(t, "882", call.Query.Get("series_group"))
	assert.Equal(t, "NSA", call.Query.Get("season"))
}

func TestMapsValidation(t *testing.T) {
	stub := &stubDispatcher{}
	maps := NewMapsClient(stub)
	ctx := context.Background()

	_, err := maps.ShapeFile(ctx, "galaxy")
	assert.True(t, core.IsValidationError(err))

	_, err = maps.RegionalData(ctx, RegionalDataOptions{SeriesGroup: "882", RegionType: "state", Date: "2013-01-01", Units: "Dollars"})
	assert.True(t, core.IsValidationError(err), "season is required")

	_, err = maps.RegionalData(ctx, RegionalDataOptions{SeriesGroup: "882", RegionType: "planet", Date: "2013-01-01", Season: "NSA", Units: "Dollars"})
	assert.True(t, core.IsValidationError(err))

	_, err = maps.SeriesData(ctx, "WIPCPI", SeriesDataOptions{Date: "13-01-01"})
	assert.True(t, core.IsValidationError(err))

	assert.Empty(t, stub.calls)
}

func TestShapeFile(t *testing.T) {
	stub := &stubDispatcher{payloads: map[string]string{
		"shapes/file": `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"Wisconsin","fips":"55"},"geometry":{"type":"Polygon","coordinates":[]}}]}`,
	}}
	maps := NewMapsClient(stub)

	shape, err := maps.ShapeFile(context.Background(), "state")
	require.NoError(t, err)
	require.Len(t, shape.Features, 1)
	assert.Equal(t, "Wisconsin", shape.Features[0].Properties["name"])
	assert.Equal(t, "state", stub.last(t).Query.Get("shape"))
}
