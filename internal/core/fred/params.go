package fred

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/namelens/fredlens/internal/core"
)

const (
	// MaxLimit is the largest page size list endpoints accept.
	MaxLimit = 1000

	// MaxObservationLimit is the largest page size of series/observations.
	MaxObservationLimit = 100000

	// MaxDateLimit is the largest page size of date lists.
	MaxDateLimit = 10000

	updateTimeLayout = "200601021504"
)

var (
	sortOrders = []string{"asc", "desc"}

	seriesOrderBy = []string{
		"series_id", "title", "units", "frequency", "seasonal_adjustment",
		"realtime_start", "realtime_end", "last_updated", "observation_start",
		"observation_end", "popularity", "group_popularity",
	}
	searchOrderBy  = append([]string{"search_rank"}, seriesOrderBy...)
	tagOrderBy     = []string{"series_count", "popularity", "created", "name", "group_id"}
	releaseOrderBy = []string{"release_id", "name", "press_release", "realtime_start", "realtime_end"}
	dateOrderBy    = []string{"release_date", "release_id", "release_name"}
	sourceOrderBy  = []string{"source_id", "name", "realtime_start", "realtime_end"}

	filterVariables = []string{"frequency", "units", "seasonal_adjustment"}
	tagGroups       = []string{"freq", "gen", "geo", "geot", "rls", "seas", "src", "cc"}
	searchTypes     = []string{"full_text", "series_id"}
	updateFilters   = []string{"macro", "regional", "all"}

	units        = []string{"lin", "chg", "ch1", "pch", "pc1", "pca", "cch", "cca", "log"}
	frequencies  = []string{"d", "w", "bw", "m", "q", "sa", "a", "wef", "weth", "wew", "wetu", "wem", "wesu", "wesa", "bwew", "bwem"}
	aggregations = []string{"avg", "sum", "eop"}

	shapes      = []string{"bea", "msa", "frb", "necta", "state", "country", "county", "censusregion", "censusdivision"}
	regionTypes = []string{"bea", "msa", "frb", "necta", "state", "country", "county", "censusregion"}
	seasons     = []string{"SA", "NSA", "SSA"}
)

// Realtime bounds a request to a real-time period. Empty fields use the
// API defaults (today).
type Realtime struct {
	Start string
	End   string
}

func (r Realtime) validate() error {
	if err := checkDate("realtime_start", r.Start); err != nil {
		return err
	}
	if err := checkDate("realtime_end", r.End); err != nil {
		return err
	}
	if r.Start != "" && r.End != "" && r.End < r.Start {
		return core.NewValidationError("realtime_end", "%s is before realtime_start %s", r.End, r.Start)
	}
	return nil
}

func (r Realtime) apply(q url.Values) {
	setString(q, "realtime_start", r.Start)
	setString(q, "realtime_end", r.End)
}

// Paging controls the size, offset and order of a list.
type Paging struct {
	Limit     int
	Offset    int
	OrderBy   string
	SortOrder string
}

func (p Paging) validate(maxLimit int, orderBy []string) error {
	if p.Limit < 0 || p.Limit > maxLimit {
		return core.NewValidationError("limit", "%d is outside 1..%d", p.Limit, maxLimit)
	}
	if p.Offset < 0 {
		return core.NewValidationError("offset", "must not be negative")
	}
	if err := checkEnum("order_by", p.OrderBy, orderBy); err != nil {
		return err
	}
	return checkEnum("sort_order", p.SortOrder, sortOrders)
}

func (p Paging) apply(q url.Values) {
	setInt(q, "limit", p.Limit)
	setInt(q, "offset", p.Offset)
	setString(q, "order_by", p.OrderBy)
	setString(q, "sort_order", p.SortOrder)
}

func checkID(field string, id int) error {
	if id < 0 {
		return core.NewValidationError(field, "must not be negative, got %d", id)
	}
	return nil
}

func checkText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return core.NewValidationError(field, "is required")
	}
	return nil
}

func checkDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(core.DateLayout, value); err != nil {
		return core.NewValidationError(field, "%q is not a YYYY-MM-DD date", value)
	}
	return nil
}

func checkDates(field string, values []string) error {
	for _, value := range values {
		if err := checkDate(field, value); err != nil {
			return err
		}
	}
	return nil
}

func checkEnum(field, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return core.NewValidationError(field, "%q is not one of %s", value, strings.Join(allowed, ", "))
}

func checkTags(field string, names []string) error {
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return core.NewValidationError(field, "contains a blank tag name")
		}
		if strings.Contains(name, ";") {
			return core.NewValidationError(field, "tag %q must not contain ';'", name)
		}
	}
	return nil
}

func setString(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}

func setInt(q url.Values, key string, value int) {
	if value > 0 {
		q.Set(key, strconv.Itoa(value))
	}
}

func setBool(q url.Values, key string, value bool) {
	if value {
		q.Set(key, "true")
	}
}

// setList joins values the way FRED expects multi-valued parameters.
func setList(q url.Values, key string, values []string) {
	if len(values) > 0 {
		q.Set(key, strings.Join(values, ";"))
	}
}

func withID(key string, id int) url.Values {
	return url.Values{key: []string{strconv.Itoa(id)}}
}

func withText(key, value string) url.Values {
	return url.Values{key: []string{strings.TrimSpace(value)}}
}
