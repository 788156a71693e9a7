package synth

import (
	"strings"
	"text/template"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
)

// The "**Day X:**" instruction is what the calendar exporter keys on.
var promptTmpl = template.Must(template.New("itinerary").Parse(
	`Create a detailed {{.Days}}-day travel itinerary for {{.Destination}}.

Trip Details:
- From: {{.Departure}}
- Destination: {{.Destination}}
- Duration: {{.Days}} days
- Budget: {{.Budget}}
- Travel Style: {{.Style}}
- Interests: {{.Interests}}

Research Information:
{{.Research}}

Create a comprehensive itinerary with:
1. Transportation from departure location to destination (flights, trains, etc.)
2. Day-by-day breakdown using **Day X:** format
3. Morning, afternoon, evening activities
4. Specific attractions, restaurants, accommodations
5. Budget-appropriate suggestions
6. Local transportation options
7. Return journey information

Format in markdown with clear sections.`))

type promptData struct {
	Departure   string
	Destination string
	Days        int
	Budget      model.Budget
	Style       model.Style
	Interests   string
	Research    string
}

// BuildPrompt renders the single user message sent to the completion provider.
func BuildPrompt(trip model.TripRequest, research string) string {
	departure := strings.TrimSpace(trip.Departure)
	if departure == "" {
		departure = "Not specified"
	}
	var b strings.Builder
	// Execute only fails on writer errors; strings.Builder never returns one.
	_ = promptTmpl.Execute(&b, promptData{
		Departure:   departure,
		Destination: trip.Destination,
		Days:        trip.Days,
		Budget:      trip.Budget,
		Style:       trip.Style,
		Interests:   strings.Join(trip.Interests, ", "),
		Research:    research,
	})
	return b.String()
}
