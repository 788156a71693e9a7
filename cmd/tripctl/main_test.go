package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestCalendarCmd_FromFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "paris.txt")
	require.NoError(t, os.WriteFile(in, []byte("**Day 1:** Louvre\n**Day 3:** Orsay\n"), 0o644))
	outPath := filepath.Join(dir, "paris.ics")

	stdout, stderr, err := run(t, "calendar", "--in", in, "--destination", "Paris", "--start", "2024-01-01", "--out", outPath)
	require.NoError(t, err)
	assert.Equal(t, outPath+"\n", stdout)
	assert.Contains(t, stderr, "2 calendar events")
	assert.Contains(t, stderr, "warning: day 2 is labeled 3")

	ics, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(ics), "SUMMARY:Paris - Day 2")
	assert.Contains(t, string(ics), "20240102")
}

func TestCalendarCmd_Stdin(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader("no markers here"))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"calendar"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "BEGIN:VCALENDAR")
	assert.NotContains(t, out.String(), "BEGIN:VEVENT")
}

func TestCalendarCmd_BadStart(t *testing.T) {
	_, _, err := run(t, "calendar", "--start", "01/01/2024")
	assert.Error(t, err)
}

func TestPlanCmd_WritesFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"content": "**Day 1:** Arrive\n**Day 2:** Leave"}}},
		})
	}))
	defer srv.Close()

	t.Setenv("TRAVEL_AGENT_COMPLETION_BASE_URL", srv.URL)
	t.Setenv("TRAVEL_AGENT_GROQ_API_KEY", "gsk-test")
	t.Setenv("TRAVEL_AGENT_SERP_API_KEY", "")
	t.Setenv("SERP_API_KEY", "")

	dir := t.TempDir()
	stdout, stderr, err := run(t, "plan", "--to", "New York", "--days", "2", "--out", dir, "--pdf")
	require.NoError(t, err)
	assert.Contains(t, stderr, "2 calendar events")

	for _, name := range []string{"New_York_itinerary.txt", "New_York_itinerary.ics", "New_York_itinerary.pdf"} {
		assert.Contains(t, stdout, name)
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	txt, err := os.ReadFile(filepath.Join(dir, "New_York_itinerary.txt"))
	require.NoError(t, err)
	assert.Equal(t, "**Day 1:** Arrive\n**Day 2:** Leave", string(txt))
}

func TestPlanCmd_MissingKey(t *testing.T) {
	t.Setenv("TRAVEL_AGENT_GROQ_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	_, _, err := run(t, "plan", "--to", "Paris", "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing credential")
}

func TestPlanCmd_RequiresDestination(t *testing.T) {
	_, _, err := run(t, "plan")
	assert.Error(t, err)
}

func TestPlanCmd_ExplicitZeroDaysRejected(t *testing.T) {
	t.Setenv("TRAVEL_AGENT_GROQ_API_KEY", "gsk")
	dir := t.TempDir()
	_, _, err := run(t, "plan", "--to", "Paris", "--days", "0", "--out", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "days must be between 1 and 14")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
