// Package document renders a stored itinerary into downloadable files.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/PrathmeshSose/ai-travel-agent/internal/calendar"
)

const (
	ExtCalendar = "ics"
	ExtText     = "txt"
	ExtPDF      = "pdf"

	ContentTypeCalendar = "text/calendar"
	ContentTypeText     = "text/plain; charset=utf-8"
	ContentTypePDF      = "application/pdf"

	defaultFileStem = "trip"
)

// Filename builds "{destination}_itinerary.{ext}" with spaces replaced by
// underscores. A blank destination becomes "trip".
func Filename(destination, ext string) string {
	stem := strings.TrimSpace(destination)
	if stem == "" {
		stem = defaultFileStem
	}
	return fmt.Sprintf("%s_itinerary.%s", strings.ReplaceAll(stem, " ", "_"), ext)
}

// Text returns the itinerary verbatim.
func Text(itinerary string) []byte { return []byte(itinerary) }

// PDF lays the itinerary out on A4 pages. Markdown headings and day markers
// are set in bold; other lines wrap as body text.
func PDF(itinerary, destination string, generatedAt time.Time) ([]byte, error) {
	title := strings.TrimSpace(destination)
	if title == "" {
		title = "Trip"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title+" itinerary", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, tr(printable(title+" itinerary")), "", "", false)
	if !generatedAt.IsZero() {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 6, "Generated "+generatedAt.UTC().Format("2006-01-02 15:04 MST"))
		pdf.Ln(8)
	}

	for _, raw := range strings.Split(itinerary, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			pdf.Ln(3)
		case line == "---":
			pdf.Ln(2)
			x, y := pdf.GetXY()
			w, _ := pdf.GetPageSize()
			_, _, right, _ := pdf.GetMargins()
			pdf.Line(x, y, w-right, y)
			pdf.Ln(3)
		case strings.HasPrefix(line, "#"):
			level := len(line) - len(strings.TrimLeft(line, "#"))
			size := 15.0
			if level > 1 {
				size = 13
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, 8, tr(printable(strings.TrimSpace(strings.TrimLeft(line, "#")))), "", "", false)
		case calendar.IsDayMarker(line):
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 7, tr(printable(line)), "", "", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(printable(line)), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// printable drops markdown emphasis and runes the core PDF fonts cannot
// encode (emoji and most symbols outside cp1252).
func printable(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x2000:
			b.WriteRune(r)
		case r >= 0x2010 && r <= 0x2026, r == 0x20ac, r == 0x2122:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
