package projections

import (
	"net/url"
	"strings"
	"time"

	"volunteerconnect/internal/domain/calendar"
	"volunteerconnect/internal/domain/opportunity"
)

// MonthLayout is the events page's sub-hash format, e.g. "#2025-02".
const MonthLayout = "2006-01"

// TypeFilter is one toggle of the calendar legend.
type TypeFilter struct {
	Name    string
	Colour  string
	Visible bool
	Toggle  string // hide list after toggling this type, for the legend link
}

// CalendarMonth is what the events page shows.
type CalendarMonth struct {
	Label   string
	Month   string // YYYY-MM
	Prev    string
	Next    string
	Rows    [][]calendar.Cell
	Filters []TypeFilter
	Hidden  string // current hide list
}

// GetCalendarMonthQuery selects the month and hidden types.
type GetCalendarMonthQuery struct {
	Hash   string   // "#YYYY-MM"; empty or malformed shows the month of Now
	Hidden []string // type names to hide
	Now    time.Time
}

// GetCalendarMonthDeps holds dependencies for GetCalendarMonth.
type GetCalendarMonthDeps struct {
	Catalog *opportunity.Catalog
}

// QueryGetCalendarMonth lays out the catalog on the requested month's grid.
// INVARIANT: the catalog is not mutated
func QueryGetCalendarMonth(query GetCalendarMonthQuery, deps GetCalendarMonthDeps) CalendarMonth {
	at := query.Now
	if m, err := time.ParseInLocation(MonthLayout, strings.TrimPrefix(query.Hash, "#"), query.Now.Location()); err == nil {
		at = m
	}

	cal := calendar.New(at)
	cal.SetDate(at, deps.Catalog.InMonth(at.Year(), at.Month()))

	hidden := make(map[string]bool, len(query.Hidden))
	for _, name := range query.Hidden {
		if t, ok := opportunity.TypeByName(name); ok {
			hidden[t.Name] = true
			cal.SetFilter(t.Name, false)
		}
	}

	var filters []TypeFilter
	for _, t := range opportunity.Types() {
		filters = append(filters, TypeFilter{
			Name:    t.Name,
			Colour:  t.Colour,
			Visible: cal.Visible(t.Name),
			Toggle:  hideList(hidden, t.Name),
		})
	}

	return CalendarMonth{
		Label:   cal.Label(),
		Month:   at.Format(MonthLayout),
		Prev:    cal.DateRelative(-1).Format(MonthLayout),
		Next:    cal.DateRelative(1).Format(MonthLayout),
		Rows:    cal.Rows(),
		Filters: filters,
		Hidden:  hideList(hidden, ""),
	}
}

// ParseHidden reads the comma-separated hide list from query values.
func ParseHidden(q url.Values) []string {
	var out []string
	for _, v := range q["hide"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// hideList renders the hide set with toggle flipped, in type display order.
func hideList(hidden map[string]bool, toggle string) string {
	var names []string
	for _, t := range opportunity.Types() {
		h := hidden[t.Name]
		if t.Name == toggle {
			h = !h
		}
		if h {
			names = append(names, t.Name)
		}
	}
	return strings.Join(names, ",")
}
