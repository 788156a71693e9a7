package calendar

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func newTestExporter() *Exporter {
	n := 0
	return NewExporter(DefaultProductID,
		WithClock(func() time.Time { return fixedNow }),
		WithUIDs(func() string { n++; return fmt.Sprintf("uid-%d", n) }),
	)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parse(t *testing.T, payload []byte) *ics.Calendar {
	t.Helper()
	cal, err := ics.ParseCalendar(bytes.NewReader(payload))
	require.NoError(t, err)
	return cal
}

func TestExport_ParisExample(t *testing.T) {
	text := "**Day 1:** Arrival\nSome text\n**Day 2:** Museum"
	out := newTestExporter().Export(text, "Paris", date(2024, 1, 1))

	want := []model.CalendarEvent{
		{UID: "uid-1", Summary: "Paris - Day 1", Description: "**Day 1:** Arrival", Start: date(2024, 1, 1), End: date(2024, 1, 1), Stamp: fixedNow},
		{UID: "uid-2", Summary: "Paris - Day 2", Description: "**Day 2:** Museum", Start: date(2024, 1, 2), End: date(2024, 1, 2), Stamp: fixedNow},
	}
	if diff := cmp.Diff(want, out.Events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, out.Mismatches)

	cal := parse(t, out.Payload)
	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Paris - Day 1", events[0].GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "20240101", events[0].GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20240101", events[0].GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "Paris - Day 2", events[1].GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "20240102", events[1].GetProperty(ics.ComponentPropertyDtStart).Value)
}

func TestExport_HeaderFields(t *testing.T) {
	out := newTestExporter().Export("", "Rome", date(2024, 1, 1))
	payload := string(out.Payload)

	assert.Contains(t, payload, "BEGIN:VCALENDAR")
	assert.Contains(t, payload, "VERSION:2.0")
	assert.Contains(t, payload, "PRODID:"+DefaultProductID)
	assert.Contains(t, payload, "METHOD:PUBLISH")
}

func TestExport_NoMarkers(t *testing.T) {
	out := newTestExporter().Export("Just prose.\nNo headings here.\n", "Oslo", date(2024, 1, 1))

	assert.Empty(t, out.Events)
	cal := parse(t, out.Payload)
	assert.Empty(t, cal.Events())
	assert.NotContains(t, string(out.Payload), "BEGIN:VEVENT")
}

func TestExport_NumberingFollowsEncounterOrder(t *testing.T) {
	text := strings.Join([]string{
		"**Day 3:** Late start",
		"**Day 1:** Back to the beginning",
		"**Day 7:** Skip ahead",
		"**Day 4:** Food tour",
	}, "\n")
	out := newTestExporter().Export(text, "Lisbon", date(2024, 2, 27))

	require.Len(t, out.Events, 4)
	wantDates := []time.Time{date(2024, 2, 27), date(2024, 2, 28), date(2024, 2, 29), date(2024, 3, 1)}
	for i, ev := range out.Events {
		assert.Equal(t, fmt.Sprintf("Lisbon - Day %d", i+1), ev.Summary)
		assert.Equal(t, wantDates[i], ev.Start)
		assert.Equal(t, ev.Start, ev.End)
	}

	want := []DayMismatch{
		{Position: 1, Labeled: 3, Line: "**Day 3:** Late start"},
		{Position: 2, Labeled: 1, Line: "**Day 1:** Back to the beginning"},
		{Position: 3, Labeled: 7, Line: "**Day 7:** Skip ahead"},
	}
	if diff := cmp.Diff(want, out.Mismatches); diff != "" {
		t.Fatalf("mismatches (-want +got):\n%s", diff)
	}
}

func TestExport_LeadingWhitespaceMarker(t *testing.T) {
	out := newTestExporter().Export("intro\n   **Day 3:** Food tour\t\r", "Tokyo", date(2024, 5, 1))

	require.Len(t, out.Events, 1)
	assert.Equal(t, "**Day 3:** Food tour", out.Events[0].Description)
	assert.Equal(t, "Tokyo - Day 1", out.Events[0].Summary)
}

func TestExport_NotMarkers(t *testing.T) {
	text := strings.Join([]string{
		"**DayTrip** to the coast",
		"**day 1:** lowercase",
		"Day 1: plain",
		"## Day 1",
		"text **Day 2:** mid-line",
	}, "\n")
	out := newTestExporter().Export(text, "Nice", date(2024, 1, 1))
	assert.Empty(t, out.Events)
}

func TestExport_NoUpperBound(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&b, "**Day %d:** stop\n", i)
	}
	out := newTestExporter().Export(b.String(), "Peru", date(2024, 12, 25))

	require.Len(t, out.Events, 20)
	assert.Equal(t, date(2025, 1, 13), out.Events[19].Start)
	assert.Len(t, parse(t, out.Payload).Events(), 20)
}

func TestExport_ZeroStartDateIsToday(t *testing.T) {
	out := newTestExporter().Export("**Day 1:** Arrive", "Cairo", time.Time{})

	require.Len(t, out.Events, 1)
	assert.Equal(t, date(2024, 3, 15), out.Events[0].Start)
}

func TestExport_StartDateTimeOfDayIgnored(t *testing.T) {
	start := time.Date(2024, 7, 4, 23, 59, 0, 0, time.FixedZone("X", -5*3600))
	out := newTestExporter().Export("**Day 1:** a\n**Day 2:** b", "Boston", start)

	require.Len(t, out.Events, 2)
	assert.Equal(t, date(2024, 7, 4), out.Events[0].Start)
	assert.Equal(t, date(2024, 7, 5), out.Events[1].Start)
}

func TestExport_UniqueUIDsByDefault(t *testing.T) {
	out := NewExporter("").Export("**Day 1:** a\n**Day 2:** b", "Oslo", date(2024, 1, 1))

	require.Len(t, out.Events, 2)
	assert.NotEmpty(t, out.Events[0].UID)
	assert.NotEqual(t, out.Events[0].UID, out.Events[1].UID)
}

func TestScanMarkers_Labels(t *testing.T) {
	markers := ScanMarkers("**Day 12:** x\n**Day One:** y\n**Day :** z")
	require.Len(t, markers, 3)
	assert.Equal(t, 12, markers[0].Labeled)
	assert.Equal(t, 0, markers[1].Labeled)
	assert.Equal(t, 0, markers[2].Labeled)

	mm := Mismatches(markers)
	require.Len(t, mm, 1)
	assert.Equal(t, 1, mm[0].Position)
}

func TestIsDayMarker(t *testing.T) {
	assert.True(t, IsDayMarker("**Day 1:** x"))
	assert.True(t, IsDayMarker("  **Day 2:**"))
	assert.False(t, IsDayMarker("**DayTrip**"))
	assert.False(t, IsDayMarker(""))
}
