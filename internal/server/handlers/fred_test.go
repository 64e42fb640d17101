package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/fred"
)

// stubClient answers the calls a test cares about; the rest panic on the
// nil embedded interface.
type stubClient struct {
	FredAPI
	search   func(text string, opts fred.SearchOptions) (*core.SeriesPage, error)
	category func(id int) (*core.Category, error)
	series   func(id string) (*core.Series, error)
}

func (s stubClient) SeriesSearch(_ context.Context, text string, opts fred.SearchOptions) (*core.SeriesPage, error) {
	return s.search(text, opts)
}

func (s stubClient) Category(_ context.Context, id int) (*core.Category, error) {
	return s.category(id)
}

func (s stubClient) Series(_ context.Context, id string, _ fred.Realtime) (*core.Series, error) {
	return s.series(id)
}

func serve(h *FredHandlers, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Routes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearchSeriesForwardsQuery(t *testing.T) {
	var gotText string
	var gotOpts fred.SearchOptions
	h := &FredHandlers{Client: stubClient{search: func(text string, opts fred.SearchOptions) (*core.SeriesPage, error) {
		gotText, gotOpts = text, opts
		return &core.SeriesPage{Series: []core.Series{{ID: "UNRATE"}}}, nil
	}}}

	rec := serve(h, "/series/search?q=unemployment&limit=5&tag_names=usa;monthly&tag_names=sa&search_type=full_text")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "unemployment", gotText)
	assert.Equal(t, 5, gotOpts.Limit)
	assert.Equal(t, "full_text", gotOpts.SearchType)
	assert.Equal(t, []string{"usa", "monthly", "sa"}, gotOpts.TagNames)
	assert.Contains(t, rec.Body.String(), `"UNRATE"`)
}

func TestCategoryRejectsNonIntegerID(t *testing.T) {
	h := &FredHandlers{Client: stubClient{category: func(int) (*core.Category, error) {
		t.Fatal("client must not be called")
		return nil, nil
	}}}

	rec := serve(h, "/categories/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestSeriesNotFoundMapsTo404(t *testing.T) {
	h := &FredHandlers{Client: stubClient{series: func(id string) (*core.Series, error) {
		return nil, fmt.Errorf("series %s: %w", id, fred.ErrNotFound)
	}}}

	rec := serve(h, "/series/NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestMapsRoutesRequireMapsClient(t *testing.T) {
	rec := serve(&FredHandlers{Client: stubClient{}}, "/maps/groups/SMU56000000500000001")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitListsScopesInOrder(t *testing.T) {
	h := &FredHandlers{
		Client: stubClient{},
		Limiters: map[string]StateReporter{
			"maps": fixedState{Mode: "sync", MaxRequests: 60, InWindow: 2, Remaining: 58},
			"fred": fixedState{Mode: "async", MaxRequests: 120, InWindow: 7, Remaining: 113},
			"gone": nil,
		},
	}

	rec := serve(h, "/rate-limit")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RateLimitResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Limiters, 2)
	assert.Equal(t, "fred", resp.Limiters[0].Scope)
	assert.Equal(t, 113, resp.Limiters[0].Remaining)
	assert.Equal(t, "maps", resp.Limiters[1].Scope)
}

func TestListParamKeepsSemicolonLists(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "raw semicolons", query: "tag_names=usa;monthly&q=gdp", want: []string{"usa", "monthly"}},
		{name: "escaped semicolons", query: "tag_names=usa%3Bnsa", want: []string{"usa", "nsa"}},
		{name: "repeated and blank", query: "tag_names=a;;+b+&tag_names=&tag_names=c", want: []string{"a", "b", "c"}},
		{name: "escaped key", query: "tag%5Fnames=x", want: []string{"x"}},
		{name: "other key only", query: "exclude_tag_names=discontinued", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/series/search?"+tt.query, nil)
			assert.Equal(t, tt.want, listParam(req, "tag_names"))
		})
	}
}
