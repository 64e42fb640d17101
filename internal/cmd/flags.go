package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/fred"
)

// listFlags are the realtime and paging flags shared by list commands.
type listFlags struct {
	realtimeStart string
	realtimeEnd   string
	limit         int
	offset        int
	orderBy       string
	sortOrder     string
}

func (f *listFlags) register(cmd *cobra.Command) {
	f.registerRealtime(cmd)
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of results (0 uses the API default)")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "result offset")
	cmd.Flags().StringVar(&f.orderBy, "order-by", "", "order results by this field")
	cmd.Flags().StringVar(&f.sortOrder, "sort-order", "", "asc or desc")
}

func (f *listFlags) registerRealtime(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.realtimeStart, "realtime-start", "", "start of the real-time period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.realtimeEnd, "realtime-end", "", "end of the real-time period (YYYY-MM-DD)")
}

func (f *listFlags) realtime() fred.Realtime {
	return fred.Realtime{Start: strings.TrimSpace(f.realtimeStart), End: strings.TrimSpace(f.realtimeEnd)}
}

func (f *listFlags) paging() fred.Paging {
	return fred.Paging{Limit: f.limit, Offset: f.offset, OrderBy: f.orderBy, SortOrder: f.sortOrder}
}

func (f *listFlags) list() fred.ListOptions {
	return fred.ListOptions{Realtime: f.realtime(), Paging: f.paging()}
}

// tagFlags select tags by name, group or text.
type tagFlags struct {
	listFlags
	tagNames        []string
	excludeTagNames []string
	tagGroupID      string
	searchText      string
}

func (f *tagFlags) register(cmd *cobra.Command) {
	f.listFlags.register(cmd)
	cmd.Flags().StringSliceVar(&f.tagNames, "tag-names", nil, "tag names (repeat or comma separate)")
	cmd.Flags().StringSliceVar(&f.excludeTagNames, "exclude-tag-names", nil, "tag names to exclude")
	cmd.Flags().StringVar(&f.tagGroupID, "tag-group", "", "tag group id (freq, gen, geo, geot, rls, seas, src)")
	cmd.Flags().StringVar(&f.searchText, "search-text", "", "words to find in tag names and notes")
}

func (f *tagFlags) tags() fred.TagListOptions {
	return fred.TagListOptions{
		Realtime:   f.realtime(),
		Paging:     f.paging(),
		TagNames:   f.tagNames,
		TagGroupID: f.tagGroupID,
		SearchText: f.searchText,
	}
}

// related is set when tag names are given; the command then lists the
// tags related to them.
func (f *tagFlags) related() (fred.RelatedTagOptions, bool) {
	return fred.RelatedTagOptions{TagListOptions: f.tags(), ExcludeTagNames: f.excludeTagNames}, len(f.tagNames) > 0
}

// seriesListFlags filter the series of a category, release or search.
type seriesListFlags struct {
	listFlags
	filterVariable  string
	filterValue     string
	tagNames        []string
	excludeTagNames []string
}

func (f *seriesListFlags) register(cmd *cobra.Command) {
	f.listFlags.register(cmd)
	cmd.Flags().StringVar(&f.filterVariable, "filter-variable", "", "frequency, units or seasonal_adjustment")
	cmd.Flags().StringVar(&f.filterValue, "filter-value", "", "value of --filter-variable")
	cmd.Flags().StringSliceVar(&f.tagNames, "tag-names", nil, "only series with all of these tags")
	cmd.Flags().StringSliceVar(&f.excludeTagNames, "exclude-tag-names", nil, "skip series with any of these tags")
}

func (f *seriesListFlags) options() fred.SeriesListOptions {
	return fred.SeriesListOptions{
		Realtime:        f.realtime(),
		Paging:          f.paging(),
		FilterVariable:  f.filterVariable,
		FilterValue:     f.filterValue,
		TagNames:        f.tagNames,
		ExcludeTagNames: f.excludeTagNames,
	}
}

// observationFlags shape series/observations.
type observationFlags struct {
	listFlags
	start        string
	end          string
	units        string
	frequency    string
	aggregation  string
	outputType   int
	vintageDates []string
}

func (f *observationFlags) register(cmd *cobra.Command) {
	f.registerRealtime(cmd)
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of observations")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "observation offset")
	cmd.Flags().StringVar(&f.sortOrder, "sort-order", "", "asc or desc")
	cmd.Flags().StringVar(&f.start, "start", "", "first observation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "last observation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.units, "units", "", "lin, chg, ch1, pch, pc1, pca, cch, cca or log")
	cmd.Flags().StringVar(&f.frequency, "frequency", "", "aggregate to a lower frequency (d, w, m, q, a, ...)")
	cmd.Flags().StringVar(&f.aggregation, "aggregation", "", "avg, sum or eop")
	cmd.Flags().IntVar(&f.outputType, "output-type", 0, "1 realtime period, 2 vintage all, 3 vintage new, 4 initial release")
	cmd.Flags().StringSliceVar(&f.vintageDates, "vintage-dates", nil, "vintage dates (YYYY-MM-DD)")
}

func (f *observationFlags) options() fred.ObservationOptions {
	return fred.ObservationOptions{
		Realtime:          f.realtime(),
		Limit:             f.limit,
		Offset:            f.offset,
		SortOrder:         f.sortOrder,
		ObservationStart:  f.start,
		ObservationEnd:    f.end,
		Units:             f.units,
		Frequency:         f.frequency,
		AggregationMethod: f.aggregation,
		OutputType:        f.outputType,
		VintageDates:      f.vintageDates,
	}
}

// parseID parses a numeric category, release or source id.
func parseID(field, raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, core.NewValidationError(field, "%q is not an integer", raw)
	}
	return id, nil
}
