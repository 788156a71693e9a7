package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/calendar"
	"github.com/PrathmeshSose/ai-travel-agent/internal/document"
	"github.com/PrathmeshSose/ai-travel-agent/internal/metrics"
	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
)

// Researcher gathers destination notes. Failures are folded into the text.
type Researcher interface {
	Search(ctx context.Context, destination, credential string) model.ResearchResult
}

// Synthesizer turns a trip and its research into itinerary markdown.
type Synthesizer interface {
	Synthesize(ctx context.Context, trip model.TripRequest, research model.ResearchResult, credential string) (string, error)
}

// Download is a rendered file ready to be served or written to disk.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
	Events      int
	Mismatches  []calendar.DayMismatch
}

// PlannerService runs the research and synthesis pipeline for a session and
// renders its current plan.
type PlannerService struct {
	store      store.Store
	researcher Researcher
	synth      Synthesizer
	exporter   *calendar.Exporter
	log        zerolog.Logger
	now        func() time.Time
}

func NewPlannerService(s store.Store, r Researcher, sy Synthesizer, exp *calendar.Exporter, log zerolog.Logger) *PlannerService {
	return &PlannerService{store: s, researcher: r, synth: sy, exporter: exp, log: log, now: time.Now}
}

// Generate validates trip, researches it, synthesizes an itinerary and makes
// it the session's current plan. On failure the previous plan is kept.
func (p *PlannerService) Generate(ctx context.Context, sessionID string, trip model.TripRequest) (*model.Plan, error) {
	sess, err := p.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	plan, err := RunPipeline(ctx, p.researcher, p.synth, trip, Credentials{
		CompletionKey: sess.CompletionKey,
		SearchKey:     sess.SearchKey,
	}, p.now())
	if err != nil {
		p.log.Warn().Err(err).Str("session_id", sessionID).Msg("itinerary generation failed")
		return nil, err
	}
	stored, err := p.store.Plans().Put(ctx, sessionID, plan)
	if err != nil {
		return nil, fmt.Errorf("store plan: %w", err)
	}
	p.log.Info().
		Str("session_id", sessionID).
		Str("destination", stored.Trip.Destination).
		Int("days", stored.Trip.Days).
		Int("citations", len(stored.Citations)).
		Msg("itinerary generated")
	return stored, nil
}

// RunPipeline is the session-free pipeline: validate, research, synthesize.
// Configuration errors are returned before any provider is called.
func RunPipeline(ctx context.Context, r Researcher, sy Synthesizer, trip model.TripRequest, creds Credentials, now time.Time) (*model.Plan, error) {
	trip, err := NormalizeTrip(trip)
	if err != nil {
		return nil, err
	}
	if creds.CompletionKey == "" {
		return nil, fmt.Errorf("completion API key is not configured: %w", model.ErrMissingCredential)
	}

	research := r.Search(ctx, trip.Destination, creds.SearchKey)
	itinerary, err := sy.Synthesize(ctx, trip, research, creds.CompletionKey)
	if err != nil {
		return nil, err
	}
	y, m, d := now.Date()
	return &model.Plan{
		Trip:        trip,
		Itinerary:   itinerary,
		Citations:   research.Citations,
		StartDate:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		GeneratedAt: now.UTC(),
	}, nil
}

func (p *PlannerService) Current(ctx context.Context, sessionID string) (*model.Plan, error) {
	return p.store.Plans().Current(ctx, sessionID)
}

// Reset starts a new trip by dropping the current plan.
func (p *PlannerService) Reset(ctx context.Context, sessionID string) error {
	return p.store.Plans().Clear(ctx, sessionID)
}

// ExportCalendar renders the current plan as iCalendar. A zero start uses
// the plan's own start date.
func (p *PlannerService) ExportCalendar(ctx context.Context, sessionID string, start time.Time) (*Download, error) {
	plan, err := p.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		start = plan.StartDate
	}
	return p.Calendar(plan.Itinerary, plan.Trip.Destination, start), nil
}

// Calendar renders arbitrary itinerary text as iCalendar.
func (p *PlannerService) Calendar(itinerary, destination string, start time.Time) *Download {
	return RenderCalendar(p.exporter, itinerary, destination, start)
}

// RenderCalendar exports itinerary with exp and records the export metrics.
// A blank destination is titled "Trip".
func RenderCalendar(exp *calendar.Exporter, itinerary, destination string, start time.Time) *Download {
	title := strings.TrimSpace(destination)
	if title == "" {
		title = "Trip"
	}
	out := exp.Export(itinerary, title, start)
	metrics.CalendarExports.Inc()
	metrics.CalendarDayMismatches.Add(float64(len(out.Mismatches)))
	return &Download{
		Filename:    document.Filename(destination, document.ExtCalendar),
		ContentType: document.ContentTypeCalendar,
		Body:        out.Payload,
		Events:      len(out.Events),
		Mismatches:  out.Mismatches,
	}
}

func (p *PlannerService) ExportText(ctx context.Context, sessionID string) (*Download, error) {
	plan, err := p.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Download{
		Filename:    document.Filename(plan.Trip.Destination, document.ExtText),
		ContentType: document.ContentTypeText,
		Body:        document.Text(plan.Itinerary),
	}, nil
}

func (p *PlannerService) ExportPDF(ctx context.Context, sessionID string) (*Download, error) {
	plan, err := p.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	body, err := document.PDF(plan.Itinerary, plan.Trip.Destination, plan.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &Download{
		Filename:    document.Filename(plan.Trip.Destination, document.ExtPDF),
		ContentType: document.ContentTypePDF,
		Body:        body,
	}, nil
}
