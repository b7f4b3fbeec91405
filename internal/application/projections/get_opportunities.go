package projections

import (
	"time"

	"volunteerconnect/internal/domain/opportunity"
)

// OpportunityCard is one card on the opportunities page.
type OpportunityCard struct {
	Title       string
	Description string // markdown
	When        string
	Type        string
	Colour      string
	Upcoming    bool
	Location    *opportunity.LatLng
}

// GetOpportunitiesDeps holds dependencies for GetOpportunities.
type GetOpportunitiesDeps struct {
	Catalog *opportunity.Catalog
}

// QueryGetOpportunities lists every opportunity by date, flagging those not yet past.
func QueryGetOpportunities(now time.Time, deps GetOpportunitiesDeps) []OpportunityCard {
	all := deps.Catalog.All()
	cards := make([]OpportunityCard, 0, len(all))
	for _, o := range all {
		cards = append(cards, OpportunityCard{
			Title:       o.Title,
			Description: o.Description,
			When:        o.DisplayDate(),
			Type:        o.Type.Name,
			Colour:      o.Type.Colour,
			Upcoming:    !o.Date.Before(now),
			Location:    o.Location,
		})
	}
	return cards
}
