package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/frame"
	"github.com/namelens/fredlens/internal/core/fred"
)

// FredAPI is the part of the FRED client the gateway serves.
type FredAPI interface {
	Series(ctx context.Context, id string, rt fred.Realtime) (*core.Series, error)
	SeriesObservations(ctx context.Context, id string, opts fred.ObservationOptions) (*core.Observations, error)
	SeriesSearch(ctx context.Context, text string, opts fred.SearchOptions) (*core.SeriesPage, error)
	Category(ctx context.Context, id int) (*core.Category, error)
	CategoryChildren(ctx context.Context, id int, rt fred.Realtime) ([]core.Category, error)
	Release(ctx context.Context, id int, rt fred.Realtime) (*core.Release, error)
	Source(ctx context.Context, id int, rt fred.Realtime) (*core.Source, error)
}

// MapsAPI is the part of the maps client the gateway serves.
type MapsAPI interface {
	SeriesGroup(ctx context.Context, seriesID string) (*core.SeriesGroup, error)
	RegionalData(ctx context.Context, opts fred.RegionalDataOptions) (*core.RegionalData, error)
}

// StateReporter exposes the rate limit state of a dispatcher.
type StateReporter interface {
	State() core.RateLimitState
}

// FredHandlers serves FRED lookups over HTTP. Maps and Limiters are optional.
type FredHandlers struct {
	Client   FredAPI
	Maps     MapsAPI
	Limiters map[string]StateReporter
}

// Routes mounts the handlers on r.
func (h *FredHandlers) Routes(r chi.Router) {
	r.Get("/series/search", h.SearchSeries)
	r.Get("/series/{id}", h.GetSeries)
	r.Get("/series/{id}/observations", h.GetObservations)
	r.Get("/categories/{id}", h.GetCategory)
	r.Get("/categories/{id}/children", h.GetCategoryChildren)
	r.Get("/releases/{id}", h.GetRelease)
	r.Get("/sources/{id}", h.GetSource)
	r.Get("/rate-limit", h.GetRateLimit)
	if h.Maps != nil {
		r.Get("/maps/groups/{id}", h.GetSeriesGroup)
		r.Get("/maps/regional", h.GetRegionalData)
	}
}

func (h *FredHandlers) GetSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.Client.Series(r.Context(), chi.URLParam(r, "id"), realtimeParams(r))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, series)
}

// GetObservations returns observations as JSON, or as a date,value table
// when format=csv.
func (h *FredHandlers) GetObservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(r, "limit")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	opts := fred.ObservationOptions{
		Realtime:          realtimeParams(r),
		Limit:             limit,
		Offset:            offset,
		SortOrder:         q.Get("sort_order"),
		ObservationStart:  q.Get("observation_start"),
		ObservationEnd:    q.Get("observation_end"),
		Units:             q.Get("units"),
		Frequency:         q.Get("frequency"),
		AggregationMethod: q.Get("aggregation_method"),
	}

	id := chi.URLParam(r, "id")
	obs, err := h.Client.SeriesObservations(r.Context(), id, opts)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if !strings.EqualFold(q.Get("format"), "csv") {
		writeJSON(w, obs)
		return
	}
	table, err := frame.FromObservations(id, obs.Observations)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = table.WriteCSV(w)
}

func (h *FredHandlers) SearchSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(r, "limit")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	opts := fred.SearchOptions{SearchType: q.Get("search_type")}
	opts.Realtime = realtimeParams(r)
	opts.Limit = limit
	opts.OrderBy = q.Get("order_by")
	opts.SortOrder = q.Get("sort_order")
	opts.TagNames = listParam(r, "tag_names")

	page, err := h.Client.SeriesSearch(r.Context(), q.Get("q"), opts)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, page)
}

func (h *FredHandlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	category, err := h.Client.Category(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, category)
}

func (h *FredHandlers) GetCategoryChildren(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	children, err := h.Client.CategoryChildren(r.Context(), id, realtimeParams(r))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"categories": children})
}

func (h *FredHandlers) GetRelease(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	release, err := h.Client.Release(r.Context(), id, realtimeParams(r))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, release)
}

func (h *FredHandlers) GetSource(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	source, err := h.Client.Source(r.Context(), id, realtimeParams(r))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, source)
}

func (h *FredHandlers) GetSeriesGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.Maps.SeriesGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, group)
}

// GetRegionalData returns a cross section as flattened rows.
func (h *FredHandlers) GetRegionalData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := fred.RegionalDataOptions{
		SeriesGroup:       q.Get("series_group"),
		RegionType:        q.Get("region_type"),
		Date:              q.Get("date"),
		StartDate:         q.Get("start_date"),
		Season:            q.Get("season"),
		Units:             q.Get("units"),
		Frequency:         q.Get("frequency"),
		Transformation:    q.Get("transformation"),
		AggregationMethod: q.Get("aggregation_method"),
	}
	data, err := h.Maps.RegionalData(r.Context(), opts)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"title": data.Title,
		"units": data.Units,
		"rows":  frame.FromRegionalData(*data),
	})
}

// RateLimitResponse lists limiter states by scope, sorted by scope.
type RateLimitResponse struct {
	Limiters []ScopedState `json:"limiters"`
}

type ScopedState struct {
	Scope string `json:"scope"`
	core.RateLimitState
}

func (h *FredHandlers) GetRateLimit(w http.ResponseWriter, r *http.Request) {
	resp := RateLimitResponse{Limiters: []ScopedState{}}
	for scope, reporter := range h.Limiters {
		if reporter == nil {
			continue
		}
		resp.Limiters = append(resp.Limiters, ScopedState{Scope: scope, RateLimitState: reporter.State()})
	}
	sort.Slice(resp.Limiters, func(i, j int) bool {
		return resp.Limiters[i].Scope < resp.Limiters[j].Scope
	})
	writeJSON(w, resp)
}

func realtimeParams(r *http.Request) fred.Realtime {
	q := r.URL.Query()
	return fred.Realtime{Start: q.Get("realtime_start"), End: q.Get("realtime_end")}
}

func idParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewValidationError("id", "%q is not an integer", raw)
	}
	return id, nil
}

func intParam(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewValidationError(key, "%q is not an integer", raw)
	}
	return value, nil
}

// listParam accepts repeated keys and ';' separated values. The raw query is
// scanned directly because url.ParseQuery drops pairs containing ';'.
func listParam(r *http.Request, key string) []string {
	var out []string
	for _, pair := range strings.Split(r.URL.RawQuery, "&") {
		rawName, raw, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(rawName)
		if err != nil || name != key {
			continue
		}
		value, err := url.QueryUnescape(raw)
		if err != nil {
			continue
		}
		for _, part := range strings.Split(value, ";") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
