package opportunity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Type classifies an opportunity and gives it a calendar colour.
type Type struct {
	Name   string
	Colour string
}

// Known opportunity types.
var (
	Fundraiser = Type{Name: "Fundraiser", Colour: "#87FFAC"}
	Workshop   = Type{Name: "Workshop", Colour: "#FFE687"}
	Cleanup    = Type{Name: "Cleanup", Colour: "#878FFF"}
)

// Types lists every type in display order.
func Types() []Type {
	return []Type{Fundraiser, Workshop, Cleanup}
}

// TypeByName finds a type by its case-insensitive name.
func TypeByName(name string) (Type, bool) {
	for _, t := range Types() {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Type{}, false
}

// LatLng is an optional map location.
type LatLng struct {
	Lat float64
	Lng float64
}

// Opportunity is a volunteering event.
type Opportunity struct {
	Title       string
	Description string // markdown
	Date        time.Time
	Type        Type
	Location    *LatLng
}

// Validate checks the opportunity's invariants.
func (o *Opportunity) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return errors.New("opportunity title cannot be empty")
	}
	if o.Date.IsZero() {
		return errors.New("opportunity date is required")
	}
	if _, ok := TypeByName(o.Type.Name); !ok {
		return fmt.Errorf("unknown opportunity type %q", o.Type.Name)
	}
	return nil
}

// DisplayDate renders the date as "Month Day HH:MM:SS".
func (o *Opportunity) DisplayDate() string {
	return fmt.Sprintf("%s %d %s", o.Date.Month(), o.Date.Day(), o.Date.Format("15:04:05"))
}

// Catalog holds the opportunities known to the application, ordered by date.
type Catalog struct {
	mu    sync.RWMutex
	items []Opportunity
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Add validates and inserts an opportunity, keeping date order.
func (c *Catalog) Add(o Opportunity) error {
	if err := o.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, o)
	sort.SliceStable(c.items, func(i, j int) bool { return c.items[i].Date.Before(c.items[j].Date) })
	return nil
}

// All returns a copy of every opportunity in date order.
func (c *Catalog) All() []Opportunity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Opportunity, len(c.items))
	copy(out, c.items)
	return out
}

// InMonth returns the opportunities dated within the given month.
func (c *Catalog) InMonth(year int, month time.Month) []Opportunity {
	var out []Opportunity
	for _, o := range c.All() {
		if o.Date.Year() == year && o.Date.Month() == month {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of opportunities.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
