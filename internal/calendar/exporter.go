// Package calendar converts generated itinerary text into an iCalendar file
// with one all-day event per day marker.
package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
)

const DefaultProductID = "-//AI Travel Agent//github.com//"

// Export is the outcome of one conversion.
type Export struct {
	Payload    []byte
	Events     []model.CalendarEvent
	Mismatches []DayMismatch
}

// Exporter builds calendar payloads. The zero value is not usable; use NewExporter.
type Exporter struct {
	productID string
	now       func() time.Time
	newUID    func() string
	log       zerolog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock overrides the clock used for DTSTAMP and the default start date.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithUIDs overrides event UID generation.
func WithUIDs(newUID func() string) Option {
	return func(e *Exporter) { e.newUID = newUID }
}

// WithLogger sets the logger used to report day-number mismatches.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Exporter) { e.log = log }
}

// NewExporter returns an Exporter stamping calendars with productID.
func NewExporter(productID string, opts ...Option) *Exporter {
	if productID == "" {
		productID = DefaultProductID
	}
	e := &Exporter{
		productID: productID,
		now:       time.Now,
		newUID:    uuid.NewString,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export converts itinerary into a published calendar. A zero startDate
// means today. Each day marker becomes one all-day event; numbering and
// dates follow marker order, never the number written in the marker.
func (e *Exporter) Export(itinerary, destination string, startDate time.Time) *Export {
	now := e.now()
	if startDate.IsZero() {
		startDate = now
	}
	start := dateOnly(startDate)

	cal := ics.NewCalendar()
	cal.SetProductId(e.productID)
	cal.SetVersion("2.0")
	cal.SetMethod(ics.MethodPublish)

	markers := ScanMarkers(itinerary)
	events := make([]model.CalendarEvent, 0, len(markers))
	for _, m := range markers {
		day := start.AddDate(0, 0, m.Position-1)
		ev := model.CalendarEvent{
			UID:         e.newUID(),
			Summary:     fmt.Sprintf("%s - Day %d", destination, m.Position),
			Description: m.Line,
			Start:       day,
			End:         day,
			Stamp:       now.UTC(),
		}

		vevent := cal.AddEvent(ev.UID)
		vevent.SetSummary(ev.Summary)
		vevent.SetDescription(ev.Description)
		vevent.SetAllDayStartAt(ev.Start)
		vevent.SetAllDayEndAt(ev.End)
		vevent.SetDtStampTime(ev.Stamp)
		events = append(events, ev)
	}

	mismatches := Mismatches(markers)
	for _, mm := range mismatches {
		e.log.Warn().
			Int("position", mm.Position).
			Int("labeled", mm.Labeled).
			Str("destination", destination).
			Msg("day marker number differs from its position")
	}

	return &Export{
		Payload:    []byte(cal.Serialize()),
		Events:     events,
		Mismatches: mismatches,
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
