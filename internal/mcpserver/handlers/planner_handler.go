// Package handlers exposes planner operations as MCP tools.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/PrathmeshSose/ai-travel-agent/internal/calendar"
	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/services"
)

// PlannerHandler runs the planning pipeline with the server's own keys.
type PlannerHandler struct {
	researcher services.Researcher
	synth      services.Synthesizer
	exporter   *calendar.Exporter
	creds      services.Credentials
	now        func() time.Time
}

func NewPlannerHandler(r services.Researcher, s services.Synthesizer, exp *calendar.Exporter, creds services.Credentials) *PlannerHandler {
	return &PlannerHandler{researcher: r, synth: s, exporter: exp, creds: creds, now: time.Now}
}

func (ph *PlannerHandler) RegisterTools(s *server.MCPServer) error {
	budgets := make([]string, len(model.Budgets))
	for i, b := range model.Budgets {
		budgets[i] = string(b)
	}
	styles := make([]string, len(model.Styles))
	for i, st := range model.Styles {
		styles[i] = string(st)
	}

	plan := mcp.NewTool("plan_trip",
		mcp.WithDescription("Research a destination and generate a day-by-day itinerary with **Day N:** headings"),
		mcp.WithString("destination", mcp.Required(), mcp.Description("Where the trip goes")),
		mcp.WithString("departure", mcp.Description("Where the traveller starts from")),
		mcp.WithNumber("days", mcp.Description("Trip length, 1-14 (default 3)")),
		mcp.WithString("budget", mcp.Description("Budget tier"), mcp.Enum(budgets...)),
		mcp.WithString("style", mcp.Description("Travel style"), mcp.Enum(styles...)),
		mcp.WithArray("interests", mcp.Description("Interest tags, e.g. culture, food"), mcp.Items(map[string]any{"type": "string"})),
	)
	export := mcp.NewTool("export_calendar",
		mcp.WithDescription("Convert itinerary text into an iCalendar document with one all-day event per day heading"),
		mcp.WithString("itinerary", mcp.Required(), mcp.Description("Itinerary text containing **Day N:** lines")),
		mcp.WithString("destination", mcp.Description("Used in event titles (default Trip)")),
		mcp.WithString("start_date", mcp.Description("First day, YYYY-MM-DD (default today)")),
	)
	s.AddTool(plan, ph.handlePlanTrip)
	s.AddTool(export, ph.handleExportCalendar)
	return nil
}

type planResult struct {
	Destination string   `json:"destination"`
	Days        int      `json:"days"`
	StartDate   string   `json:"startDate"`
	Itinerary   string   `json:"itinerary"`
	Citations   []string `json:"citations"`
}

func (ph *PlannerHandler) handlePlanTrip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	trip := model.TripRequest{
		Destination: stringArg(args, "destination"),
		Departure:   stringArg(args, "departure"),
		Budget:      model.Budget(stringArg(args, "budget")),
		Style:       model.Style(stringArg(args, "style")),
		Interests:   stringsArg(args, "interests"),
	}
	if raw, ok := args["days"]; ok && raw != nil {
		days, err := wholeDays(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		trip.Days = days
	}

	log.Debug().Str("destination", trip.Destination).Int("days", trip.Days).Msg("plan_trip invoked")

	start := time.Now()
	plan, err := services.RunPipeline(ctx, ph.researcher, ph.synth, trip, ph.creds, ph.now())
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("plan_trip failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to plan trip: %v", err)), nil
	}

	b, _ := json.Marshal(planResult{
		Destination: plan.Trip.Destination,
		Days:        plan.Trip.Days,
		StartDate:   plan.StartDate.Format("2006-01-02"),
		Itinerary:   plan.Itinerary,
		Citations:   plan.Citations,
	})
	return mcp.NewToolResultText(string(b)), nil
}

type calendarResult struct {
	Filename   string                 `json:"filename"`
	Events     int                    `json:"events"`
	Mismatches []calendar.DayMismatch `json:"mismatches,omitempty"`
	ICS        string                 `json:"ics"`
}

func (ph *PlannerHandler) handleExportCalendar(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	itinerary, err := req.RequireString("itinerary")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var startDate time.Time
	if s := stringArg(args, "start_date"); s != "" {
		if startDate, err = time.Parse("2006-01-02", s); err != nil {
			return mcp.NewToolResultError("start_date must be YYYY-MM-DD"), nil
		}
	}

	d := services.RenderCalendar(ph.exporter, itinerary, stringArg(args, "destination"), startDate)
	b, _ := json.Marshal(calendarResult{
		Filename:   d.Filename,
		Events:     d.Events,
		Mismatches: d.Mismatches,
		ICS:        string(d.Body),
	})
	return mcp.NewToolResultText(string(b)), nil
}

// wholeDays accepts a JSON number that is an integer in the allowed range.
func wholeDays(raw any) (int, error) {
	d, ok := raw.(float64)
	if !ok || d != math.Trunc(d) || d < model.MinTripDays || d > model.MaxTripDays {
		return 0, fmt.Errorf("days must be a whole number between %d and %d", model.MinTripDays, model.MaxTripDays)
	}
	return int(d), nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func stringsArg(args map[string]any, key string) []string {
	raw, _ := args[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
