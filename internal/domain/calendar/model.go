package calendar

import (
	"fmt"
	"log/slog"
	"time"

	"volunteerconnect/internal/domain/opportunity"
)

// Grid dimensions.
const (
	Columns = 7
	MaxRows = 6
)

// Placement is an opportunity drawn inside a day cell.
type Placement struct {
	Opportunity opportunity.Opportunity
	Visible     bool
}

// Cell is one day slot of the month grid. Inactive cells pad the first and last week.
type Cell struct {
	Day        int
	Active     bool
	Placements []Placement
}

// Calendar lays out opportunities on a month grid with per-type filters.
// INVARIANT: every row in rows contains at least one active cell
type Calendar struct {
	date    time.Time
	rows    [][]Cell
	visible map[string]bool
}

// New returns a calendar showing the month containing at, with every type visible.
func New(at time.Time) *Calendar {
	c := &Calendar{visible: make(map[string]bool)}
	for _, t := range opportunity.Types() {
		c.visible[t.Name] = true
	}
	c.SetDate(at, nil)
	return c
}

// SetDate redraws the grid for the month containing at and places every
// opportunity in items that falls inside it.
// POST: previous placements are discarded
func (c *Calendar) SetDate(at time.Time, items []opportunity.Opportunity) {
	c.date = at
	c.drawDays()
	for _, o := range items {
		c.Place(o)
	}
}

// Date returns the date the calendar was set to.
func (c *Calendar) Date() time.Time {
	return c.date
}

// Label renders the month heading, e.g. "February 2025".
func (c *Calendar) Label() string {
	return fmt.Sprintf("%s %d", c.date.Month(), c.date.Year())
}

// Rows returns the drawn week rows.
func (c *Calendar) Rows() [][]Cell {
	return c.rows
}

// DateRelative returns the first day of the month offset months from the
// displayed one; an offset of zero returns the displayed date unchanged.
func (c *Calendar) DateRelative(offset int) time.Time {
	if offset == 0 {
		return c.date
	}
	return time.Date(c.date.Year(), c.date.Month()+time.Month(offset), 1, 0, 0, 0, 0, c.date.Location())
}

// Place draws o into its day cell. Opportunities from another month are skipped.
// POST: returns false when o was skipped
func (c *Calendar) Place(o opportunity.Opportunity) bool {
	d := o.Date.In(c.date.Location())
	if d.Year() != c.date.Year() || d.Month() != c.date.Month() {
		slog.Debug("calendar_skip", "title", o.Title, "month", d.Month(), "calendar_month", c.date.Month())
		return false
	}
	idx := d.Day() + c.firstWeekday() - 1
	row, col := idx/Columns, idx%Columns
	if row >= len(c.rows) {
		return false
	}
	cell := &c.rows[row][col]
	p := Placement{Opportunity: o, Visible: c.visible[o.Type.Name]}
	cell.Placements = append([]Placement{p}, cell.Placements...)
	return true
}

// SetFilter shows or hides every placement of the named type.
func (c *Calendar) SetFilter(typeName string, visible bool) {
	c.visible[typeName] = visible
	for r := range c.rows {
		for col := range c.rows[r] {
			ps := c.rows[r][col].Placements
			for i := range ps {
				if ps[i].Opportunity.Type.Name == typeName {
					ps[i].Visible = visible
				}
			}
		}
	}
}

// Visible reports the filter state for a type.
func (c *Calendar) Visible(typeName string) bool {
	return c.visible[typeName]
}

func (c *Calendar) firstWeekday() int {
	first := time.Date(c.date.Year(), c.date.Month(), 1, 0, 0, 0, 0, c.date.Location())
	return int(first.Weekday())
}

func (c *Calendar) drawDays() {
	first := c.firstWeekday()
	last := time.Date(c.date.Year(), c.date.Month()+1, 0, 0, 0, 0, 0, c.date.Location()).Day()

	c.rows = c.rows[:0]
	for r := 0; r < MaxRows; r++ {
		row := make([]Cell, Columns)
		active := false
		for col := 0; col < Columns; col++ {
			day := r*Columns + col - first + 1
			if day < 1 || day > last {
				continue
			}
			row[col] = Cell{Day: day, Active: true}
			active = true
		}
		if !active {
			break
		}
		c.rows = append(c.rows, row)
	}
}
