package fred

import (
	"net/url"
	"time"

	"github.com/namelens/fredlens/internal/core"
)

// ListOptions are the realtime and paging parameters of plain list
// endpoints (releases, sources, vintage dates).
type ListOptions struct {
	Realtime
	Paging
}

func (o ListOptions) Validate() error {
	if err := o.Realtime.validate(); err != nil {
		return err
	}
	return o.Paging.validate(MaxLimit, nil)
}

func (o ListOptions) values(orderBy []string, maxLimit int) (url.Values, error) {
	if err := o.Realtime.validate(); err != nil {
		return nil, err
	}
	if err := o.Paging.validate(maxLimit, orderBy); err != nil {
		return nil, err
	}
	q := url.Values{}
	o.Realtime.apply(q)
	o.Paging.apply(q)
	return q, nil
}

// SeriesListOptions filter the series of a category, release or tag set.
type SeriesListOptions struct {
	Realtime
	Paging
	FilterVariable  string
	FilterValue     string
	TagNames        []string
	ExcludeTagNames []string
}

func (o SeriesListOptions) Validate() error {
	if err := o.Realtime.validate(); err != nil {
		return err
	}
	if err := o.Paging.validate(MaxLimit, seriesOrderBy); err != nil {
		return err
	}
	if err := checkEnum("filter_variable", o.FilterVariable, filterVariables); err != nil {
		return err
	}
	if o.FilterValue != "" && o.FilterVariable == "" {
		return core.NewValidationError("filter_value", "requires filter_variable")
	}
	if err := checkTags("tag_names", o.TagNames); err != nil {
		return err
	}
	return checkTags("exclude_tag_names", o.ExcludeTagNames)
}

func (o SeriesListOptions) apply(q url.Values) {
	o.Realtime.apply(q)
	o.Paging.apply(q)
	setString(q, "filter_variable", o.FilterVariable)
	setString(q, "filter_value", o.FilterValue)
	setList(q, "tag_names", o.TagNames)
	setList(q, "exclude_tag_names", o.ExcludeTagNames)
}

// SearchOptions tune series/search.
type SearchOptions struct {
	SeriesListOptions
	SearchType string
}

func (o SearchOptions) Validate() error {
	list := o.SeriesListOptions
	order := list.OrderBy
	list.OrderBy = ""
	if err := list.Validate(); err != nil {
		return err
	}
	if err := checkEnum("order_by", order, searchOrderBy); err != nil {
		return err
	}
	return checkEnum("search_type", o.SearchType, searchTypes)
}

func (o SearchOptions) apply(q url.Values) {
	o.SeriesListOptions.apply(q)
	setString(q, "search_type", o.SearchType)
}

// TagListOptions filter tag lists. SearchText matches tag names and notes.
type TagListOptions struct {
	Realtime
	Paging
	TagNames   []string
	TagGroupID string
	SearchText string
}

func (o TagListOptions) Validate() error {
	if err := o.Realtime.validate(); err != nil {
		return err
	}
	if err := o.Paging.validate(MaxLimit, tagOrderBy); err != nil {
		return err
	}
	if err := checkEnum("tag_group_id", o.TagGroupID, tagGroups); err != nil {
		return err
	}
	return checkTags("tag_names", o.TagNames)
}

func (o TagListOptions) apply(q url.Values) {
	o.Realtime.apply(q)
	o.Paging.apply(q)
	setList(q, "tag_names", o.TagNames)
	setString(q, "tag_group_id", o.TagGroupID)
	setString(q, "search_text", o.SearchText)
}

// RelatedTagOptions select tags related to TagNames, which is required.
type RelatedTagOptions struct {
	TagListOptions
	ExcludeTagNames []string
}

func (o RelatedTagOptions) Validate() error {
	if len(o.TagNames) == 0 {
		return core.NewValidationError("tag_names", "is required")
	}
	if err := o.TagListOptions.Validate(); err != nil {
		return err
	}
	return checkTags("exclude_tag_names", o.ExcludeTagNames)
}

func (o RelatedTagOptions) apply(q url.Values) {
	o.TagListOptions.apply(q)
	setList(q, "exclude_tag_names", o.ExcludeTagNames)
}

// TagSeriesOptions select the series matching every tag in TagNames.
type TagSeriesOptions struct {
	Realtime
	Paging
	TagNames        []string
	ExcludeTagNames []string
}

func (o TagSeriesOptions) Validate() error {
	if len(o.TagNames) == 0 {
		return core.NewValidationError("tag_names", "is required")
	}
	if err := o.Realtime.validate(); err != nil {
		return err
	}
	if err := o.Paging.validate(MaxLimit, seriesOrderBy); err != nil {
		return err
	}
	if err := checkTags("tag_names", o.TagNames); err != nil {
		return err
	}
	return checkTags("exclude_tag_names", o.ExcludeTagNames)
}

func (o TagSeriesOptions) apply(q url.Values) {
	o.Realtime.apply(q)
	o.Paging.apply(q)
	setList(q, "tag_names", o.TagNames)
	setList(q, "exclude_tag_names", o.ExcludeTagNames)
}

// ReleaseDateOptions page through release dates.
type ReleaseDateOptions struct {
	Realtime
	Paging
	IncludeEmpty bool
}

func (o ReleaseDateOptions) Validate() error {
	if err := o.Realtime.validate(); err != nil {
		return err
	}
	return o.Paging.validate(MaxDateLimit, dateOrderBy)
}

func (o ReleaseDateOptions) apply(q url.Values) {
	o.Realtime.apply(q)
	o.Paging.apply(q)
	setBool(q, "include_release_dates_with_no_data", o.IncludeEmpty)
}

// ReleaseTableOptions select a subtree of a release table.
type ReleaseTableOptions struct {
	ElementID                int
	IncludeObservationValues bool
	ObservationDate          string
}

func (o ReleaseTableOptions) Validate() error {
	if err := checkID("element_id", o.ElementID); err != nil {
		return err
	}
	if o.ObservationDate != "" && !o.IncludeObservationValues {
		return core.NewValidationError("observation_date", "requires include_observation_values")
	}
	return checkDate("observation_date", o.ObservationDate)
}

func (o ReleaseTableOptions) apply(q url.Values) {
	setInt(q, "element_id", o.ElementID)
	setBool(q, "include_observation_values", o.IncludeObservationValues)
	setString(q, "observation_date", o.ObservationDate)
}

// ObservationOptions shape series/observations.
type ObservationOptions struct {
	Realtime
	Limit             int
	Offset            int
	SortOrder         string
	ObservationStart  string
	ObservationEnd    string
	Units             string
	Frequency         string
	AggregationMethod string
	OutputType        int
	VintageDates      []string
}

func (o ObservationOptions) Validate() error {
	if err := o.Realtime.validate(); err != nil {
		return err
	}
	paging := Paging{Limit: o.Limit, Offset: o.Offset, SortOrder: o.SortOrder}
	if err := paging.validate(MaxObservationLimit, nil); err != nil {
		return err
	}
	if err := checkDate("observation_start", o.ObservationStart); err != nil {
		return err
	}
	if err := checkDate("observation_end", o.ObservationEnd); err != nil {
		return err
	}
	if o.ObservationStart != "" && o.ObservationEnd != "" && o.ObservationEnd < o.ObservationStart {
		return core.NewValidationError("observation_end", "%s is before observation_start %s", o.ObservationEnd, o.ObservationStart)
	}
	if err := checkEnum("units", o.Units, units); err != nil {
		return err
	}
	if err := checkEnum("frequency", o.Frequency, frequencies); err != nil {
		return err
	}
	if err := checkEnum("aggregation_method", o.AggregationMethod, aggregations); err != nil {
		return err
	}
	if o.OutputType < 0 || o.OutputType > 4 {
		return core.NewValidationError("output_type", "%d is outside 1..4", o.OutputType)
	}
	return checkDates("vintage_dates", o.VintageDates)
}

func (o ObservationOptions) apply(q url.Values) {
	o.Realtime.apply(q)
	setInt(q, "limit", o.Limit)
	setInt(q, "offset", o.Offset)
	setString(q, "sort_order", o.SortOrder)
	setString(q, "observation_start", o.ObservationStart)
	setString(q, "observation_end", o.ObservationEnd)
	setString(q, "units", o.Units)
	setString(q, "frequency", o.Frequency)
	setString(q, "aggregation_method", o.AggregationMethod)
	setInt(q, "output_type", o.OutputType)
	setList(q, "vintage_dates", o.VintageDates)
}

// SeriesUpdateOptions page through recently updated series. StartTime and
// EndTime use the YYYYMMDDHhmm layout and must be set together.
type SeriesUpdateOptions struct {
	Realtime
	Limit       int
	Offset      int
	FilterValue string
	StartTime   string
	EndTime     string
}

func (o SeriesUpdateOptions) Validate() error {
	if err := o.Realtime.validate(); err != nil {
		return err
	}
	paging := Paging{Limit: o.Limit, Offset: o.Offset}
	if err := paging.validate(MaxLimit, nil); err != nil {
		return err
	}
	if err := checkEnum("filter_value", o.FilterValue, updateFilters); err != nil {
		return err
	}
	if (o.StartTime == "") != (o.EndTime == "") {
		return core.NewValidationError("start_time", "start_time and end_time must be set together")
	}
	if err := checkUpdateTime("start_time", o.StartTime); err != nil {
		return err
	}
	return checkUpdateTime("end_time", o.EndTime)
}

func checkUpdateTime(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(updateTimeLayout, value); err != nil {
		return core.NewValidationError(field, "%q is not a YYYYMMDDHhmm time", value)
	}
	return nil
}

func (o SeriesUpdateOptions) apply(q url.Values) {
	o.Realtime.apply(q)
	setInt(q, "limit", o.Limit)
	setInt(q, "offset", o.Offset)
	setString(q, "filter_value", o.FilterValue)
	setString(q, "start_time", o.StartTime)
	setString(q, "end_time", o.EndTime)
}
