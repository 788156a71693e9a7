package document

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	cases := []struct {
		dest, ext, want string
	}{
		{"Paris", ExtCalendar, "Paris_itinerary.ics"},
		{"New York City", ExtText, "New_York_City_itinerary.txt"},
		{"", ExtPDF, "trip_itinerary.pdf"},
		{"   ", ExtCalendar, "trip_itinerary.ics"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Filename(tc.dest, tc.ext), tc.dest)
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, []byte("**Day 1:** x"), Text("**Day 1:** x"))
}

func TestPDF(t *testing.T) {
	itinerary := "# Paris 🗼\n\n**Day 1:** Louvre\n- Morning: • croissant\n\n---\n\n## 📚 Sources\n\n- [A](https://a.example)"
	out, err := PDF(itinerary, "Paris", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestPDF_EmptyItinerary(t *testing.T) {
	out, err := PDF("", "", time.Time{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPrintable(t *testing.T) {
	assert.Equal(t, "Sources", printable("📚 Sources"))
	assert.Equal(t, "Day 1: Café • Montmartre – €20", printable("**Day 1:** Café • Montmartre – €20"))
}
