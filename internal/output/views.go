package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/cache"
	"github.com/namelens/fredlens/internal/core/frame"
	"github.com/namelens/fredlens/internal/core/fred"
)

// SeriesDetail shows one series as field/value rows.
func SeriesDetail(s *core.Series) View {
	return View{
		Title:  s.ID,
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Title", s.Title},
			{"Frequency", s.Frequency},
			{"Units", s.Units},
			{"Seasonal adjustment", s.SeasonalAdjustment},
			{"Observations", s.ObservationStart.String() + " to " + s.ObservationEnd.String()},
			{"Last updated", s.LastUpdated},
			{"Popularity", strconv.Itoa(s.Popularity)},
		},
		Data: s,
	}
}

func SeriesList(page *core.SeriesPage) View {
	v := View{
		Header: []string{"ID", "Title", "Frequency", "Units", "Last updated"},
		Data:   page,
	}
	for _, s := range page.Series {
		v.Rows = append(v.Rows, []string{s.ID, s.Title, s.FrequencyShort, s.UnitsShort, s.LastUpdated})
	}
	v.Footer = pageFooter(page.Page, len(page.Series))
	return v
}

// Observations renders a series as a date/value table. The frame sorts
// rows by date and shows missing values as empty cells.
func Observations(seriesID string, obs *core.Observations) (View, error) {
	table, err := frame.FromObservations(seriesID, obs.Observations)
	if err != nil {
		return View{}, err
	}
	v := View{
		Title:  seriesID,
		Header: []string{"date", seriesID},
		Data:   obs,
	}
	for i, date := range table.Dates {
		v.Rows = append(v.Rows, []string{date.Format(core.DateLayout), formatFloat(table.Values[i])})
	}
	if when, value, ok := table.Last(); ok {
		v.Footer = fmt.Sprintf("latest %s = %s", when.Format(core.DateLayout), formatFloat(value))
	}
	return v, nil
}

func Categories(categories []core.Category) View {
	v := View{Header: []string{"ID", "Name", "Parent"}, Data: categories}
	for _, c := range categories {
		v.Rows = append(v.Rows, []string{strconv.Itoa(c.ID), c.Name, strconv.Itoa(c.ParentID)})
	}
	return v
}

func Releases(releases []core.Release, data any) View {
	v := View{Header: []string{"ID", "Name", "Press release", "Link"}, Data: data}
	for _, r := range releases {
		v.Rows = append(v.Rows, []string{strconv.Itoa(r.ID), r.Name, strconv.FormatBool(r.PressRelease), r.Link})
	}
	return v
}

// ReleaseTable flattens the element tree depth first, indenting names by
// depth. Top-level elements are ordered by element id.
func ReleaseTable(t *core.ReleaseTable) View {
	v := View{Title: t.Name, Header: []string{"Element", "Series", "Name"}, Data: t}
	roots := make([]core.Element, 0, len(t.Elements))
	for _, e := range t.Elements {
		roots = append(roots, e)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ElementID < roots[j].ElementID })

	var walk func(e core.Element, depth int)
	walk = func(e core.Element, depth int) {
		v.Rows = append(v.Rows, []string{strconv.Itoa(e.ElementID), e.SeriesID, strings.Repeat("  ", depth) + e.Name})
		for _, child := range e.Children {
			walk(child, depth+1)
		}
	}
	for _, e := range roots {
		walk(e, 0)
	}
	return v
}

func ReleaseDates(page *core.ReleaseDatePage) View {
	v := View{Header: []string{"Release", "Name", "Date"}, Data: page}
	for _, d := range page.ReleaseDates {
		v.Rows = append(v.Rows, []string{strconv.Itoa(d.ReleaseID), d.ReleaseName, d.Date.String()})
	}
	v.Footer = pageFooter(page.Page, len(page.ReleaseDates))
	return v
}

func Sources(sources []core.Source, data any) View {
	v := View{Header: []string{"ID", "Name", "Link"}, Data: data}
	for _, s := range sources {
		v.Rows = append(v.Rows, []string{strconv.Itoa(s.ID), s.Name, s.Link})
	}
	return v
}

func Tags(page *core.TagPage) View {
	v := View{Header: []string{"Name", "Group", "Series", "Popularity"}, Data: page}
	for _, t := range page.Tags {
		v.Rows = append(v.Rows, []string{t.Name, t.GroupID, strconv.Itoa(t.SeriesCount), strconv.Itoa(t.Popularity)})
	}
	v.Footer = pageFooter(page.Page, len(page.Tags))
	return v
}

func VintageDates(seriesID string, vintages *core.VintageDates) View {
	v := View{Title: seriesID, Header: []string{"Vintage date"}, Data: vintages}
	for _, d := range vintages.VintageDates {
		v.Rows = append(v.Rows, []string{d.String()})
	}
	return v
}

func SeriesGroup(g *core.SeriesGroup) View {
	return View{
		Title:  g.Title,
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Series group", g.SeriesGroup},
			{"Region type", g.RegionType},
			{"Season", g.Season},
			{"Units", g.Units},
			{"Frequency", g.Frequency},
			{"Dates", g.MinDate.String() + " to " + g.MaxDate.String()},
		},
		Data: g,
	}
}

func Regional(data *core.RegionalData) View {
	rows := frame.FromRegionalData(*data)
	v := View{
		Title:  data.Title,
		Header: []string{"date", "region", "code", "series_id", "value"},
		Data:   data,
	}
	for _, row := range rows {
		v.Rows = append(v.Rows, []string{row.Date.Format(core.DateLayout), row.Region, row.Code, row.SeriesID, formatFloat(row.Value.Float())})
	}
	return v
}

func ShapeFile(shape string, file *core.ShapeFile) View {
	v := View{Title: shape, Header: []string{"#", "Name"}, Data: file}
	for i, f := range file.Features {
		name, _ := f.Properties["name"].(string)
		v.Rows = append(v.Rows, []string{strconv.Itoa(i + 1), name})
	}
	return v
}

// Batch summarizes a batch: one row per series with its observation count
// and latest value, or the error.
func Batch(results []fred.BatchResult) View {
	v := View{Header: []string{"Series", "Observations", "Latest", "Error"}, Data: results}
	failed := 0
	for _, r := range results {
		if r.Error != "" || r.Observations == nil {
			failed++
			v.Rows = append(v.Rows, []string{r.SeriesID, "", "", r.Error})
			continue
		}
		latest := ""
		if table, err := frame.FromObservations(r.SeriesID, r.Observations.Observations); err == nil {
			if when, value, ok := table.Last(); ok {
				latest = when.Format(core.DateLayout) + " " + formatFloat(value)
			}
		}
		v.Rows = append(v.Rows, []string{r.SeriesID, strconv.Itoa(len(r.Observations.Observations)), latest, ""})
	}
	v.Footer = fmt.Sprintf("%d/%d ok", len(results)-failed, len(results))
	return v
}

// ScopedState is a limiter state labelled with its scope.
type ScopedState struct {
	Scope string `json:"scope"`
	core.RateLimitState
}

func RateLimits(states []ScopedState) View {
	v := View{Header: []string{"Scope", "Mode", "In window", "Remaining", "Limit", "Window", "Reset in"}, Data: states}
	for _, s := range states {
		v.Rows = append(v.Rows, []string{
			s.Scope, s.Mode,
			strconv.Itoa(s.InWindow), strconv.Itoa(s.Remaining), strconv.Itoa(s.MaxRequests),
			s.Window, s.ResetIn,
		})
	}
	return v
}

func CacheStats(stats cache.Stats) View {
	return View{
		Header: []string{"Backend", "Entries", "Expired", "Bytes"},
		Rows: [][]string{{
			stats.Backend,
			strconv.FormatInt(stats.Entries, 10),
			strconv.FormatInt(stats.Expired, 10),
			strconv.FormatInt(stats.Bytes, 10),
		}},
		Data: stats,
	}
}

func pageFooter(page core.Page, shown int) string {
	if page.Count <= shown && page.Offset == 0 {
		return ""
	}
	return fmt.Sprintf("%d-%d of %d", page.Offset+1, page.Offset+shown, page.Count)
}

func formatFloat(v float64) string {
	if core.Number(v).IsMissing() {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
