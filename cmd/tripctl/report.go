package main

import (
	"fmt"
	"io"

	"github.com/PrathmeshSose/ai-travel-agent/internal/calendar"
)

func printMismatches(w io.Writer, events int, mismatches []calendar.DayMismatch) {
	_, _ = fmt.Fprintf(w, "%d calendar events\n", events)
	for _, m := range mismatches {
		_, _ = fmt.Fprintf(w, "warning: day %d is labeled %d: %s\n", m.Position, m.Labeled, m.Line)
	}
}
