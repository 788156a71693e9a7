package calendar

import (
	"strconv"
	"strings"
)

// DayMarkerPrefix opens every day heading the synthesizer is asked to emit
// ("**Day N:**"). Matching is case-sensitive and requires the trailing space.
const DayMarkerPrefix = "**Day "

// Marker is one day heading found in itinerary text.
type Marker struct {
	// Position is the 1-based encounter order; it drives numbering and dates.
	Position int
	// Line is the trimmed marker line.
	Line string
	// Labeled is the day number written after the prefix, 0 when absent.
	Labeled int
}

// DayMismatch records a marker whose written day number disagrees with its
// encounter position. Exported events keep the encounter position.
type DayMismatch struct {
	Position int    `json:"position"`
	Labeled  int    `json:"labeled"`
	Line     string `json:"line"`
}

// IsDayMarker reports whether line, once trimmed, opens a day.
func IsDayMarker(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), DayMarkerPrefix)
}

// ScanMarkers returns the day markers of text in encounter order.
func ScanMarkers(text string) []Marker {
	var markers []Marker
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, DayMarkerPrefix) {
			continue
		}
		markers = append(markers, Marker{
			Position: len(markers) + 1,
			Line:     trimmed,
			Labeled:  labeledDay(trimmed),
		})
	}
	return markers
}

// Mismatches lists markers whose written number differs from their position.
// Markers without a written number are not reported.
func Mismatches(markers []Marker) []DayMismatch {
	var out []DayMismatch
	for _, m := range markers {
		if m.Labeled != 0 && m.Labeled != m.Position {
			out = append(out, DayMismatch{Position: m.Position, Labeled: m.Labeled, Line: m.Line})
		}
	}
	return out
}

func labeledDay(trimmed string) int {
	rest := strings.TrimPrefix(trimmed, DayMarkerPrefix)
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return n
}
