package opportunity

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// seedFile is the YAML shape of the opportunities data file.
type seedFile struct {
	Opportunities []seedEntry `yaml:"opportunities"`
}

type seedEntry struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Type        string   `yaml:"type"`
	Location    *seedLoc `yaml:"location"`
}

type seedLoc struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// seedDateLayout is the local date-time layout used in the data file.
const seedDateLayout = "2006-01-02T15:04:05"

// LoadYAML parses an opportunities document and adds every entry to c.
// PRE: data is a YAML document with an `opportunities` list
// POST: returns the number of opportunities added, or the first error
func LoadYAML(c *Catalog, data []byte, loc *time.Location) (int, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("decode opportunities: %w", err)
	}
	for i, e := range f.Opportunities {
		date, err := time.ParseInLocation(seedDateLayout, e.Date, loc)
		if err != nil {
			return i, fmt.Errorf("opportunity %d (%s): bad date: %w", i, e.Title, err)
		}
		typ, ok := TypeByName(e.Type)
		if !ok {
			return i, fmt.Errorf("opportunity %d (%s): unknown type %q", i, e.Title, e.Type)
		}
		o := Opportunity{Title: e.Title, Description: e.Description, Date: date, Type: typ}
		if e.Location != nil {
			o.Location = &LatLng{Lat: e.Location.Lat, Lng: e.Location.Lng}
		}
		if err := c.Add(o); err != nil {
			return i, fmt.Errorf("opportunity %d: %w", i, err)
		}
	}
	return len(f.Opportunities), nil
}
