package model

import "time"

// Budget is the spending tier a trip is planned for.
type Budget string

const (
	BudgetLow    Budget = "Budget"
	BudgetMid    Budget = "Mid-range"
	BudgetLuxury Budget = "Luxury"
)

// Budgets lists the accepted budget tiers in display order.
var Budgets = []Budget{BudgetLow, BudgetMid, BudgetLuxury}

// Style is the overall pace and flavour of a trip.
type Style string

const (
	StyleExplorer  Style = "Explorer"
	StyleRelaxed   Style = "Relaxed"
	StyleAdventure Style = "Adventure"
	StyleCultural  Style = "Cultural"
	StyleFoodie    Style = "Foodie"
)

// Styles lists the accepted travel styles in display order.
var Styles = []Style{StyleExplorer, StyleRelaxed, StyleAdventure, StyleCultural, StyleFoodie}

// SuggestedInterests are the interest tags offered by the planning form.
// Interests are free text; these only seed the defaults.
var SuggestedInterests = []string{"culture", "food", "adventure", "nature", "nightlife", "shopping"}

const (
	MinTripDays     = 1
	MaxTripDays     = 14
	DefaultTripDays = 3
)

// TripRequest carries the planning form input.
type TripRequest struct {
	Departure   string   `json:"departure,omitempty"`
	Destination string   `json:"destination"`
	Days        int      `json:"days,omitempty"`
	Budget      Budget   `json:"budget"`
	Style       Style    `json:"style"`
	Interests   []string `json:"interests"`
}

// ResearchResult is the condensed output of a destination search.
type ResearchResult struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
}

// Plan is the itinerary currently held by a session.
type Plan struct {
	Trip        TripRequest `json:"trip"`
	Itinerary   string      `json:"itinerary"`
	Citations   []string    `json:"citations"`
	StartDate   time.Time   `json:"startDate"`
	GeneratedAt time.Time   `json:"generatedAt"`
}

// Session is the per-user planning context. It owns the provider
// credentials and the current plan, if any.
type Session struct {
	SessionID     string    `json:"sessionId"`
	CompletionKey string    `json:"-"`
	SearchKey     string    `json:"-"`
	Plan          *Plan     `json:"plan,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CalendarEvent is one all-day entry derived from a day marker.
type CalendarEvent struct {
	UID         string    `json:"uid"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Stamp       time.Time `json:"stamp"`
}
