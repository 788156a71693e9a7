package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// maxItineraryBytes bounds the text accepted by the stateless calendar export.
const maxItineraryBytes = 256 << 10

// MaxBodyBytes caps any request body. It leaves room for a maximal itinerary
// after JSON escaping.
const MaxBodyBytes = 1 << 20

// SessionID requires the canonical UUID form issued by session creation.
func SessionID(v string) error {
	if v == "" {
		return fmt.Errorf("sessionId is required")
	}
	if _, err := uuid.Parse(v); err != nil || len(v) != 36 {
		return fmt.Errorf("sessionId must be a UUID")
	}
	return nil
}

// StartDate parses an optional YYYY-MM-DD value. Empty yields the zero time.
func StartDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("start must be a date in YYYY-MM-DD form")
	}
	return t, nil
}

// Itinerary checks the body of a stateless calendar export.
func Itinerary(v string) error {
	if len(v) > maxItineraryBytes {
		return fmt.Errorf("itinerary exceeds %d bytes", maxItineraryBytes)
	}
	return nil
}

// Credential rejects keys that could not be sent as a header value.
func Credential(field string, v *string) error {
	if v == nil {
		return nil
	}
	if len(*v) > 512 {
		return fmt.Errorf("%s exceeds 512 characters", field)
	}
	if strings.ContainsAny(*v, "\r\n") {
		return fmt.Errorf("%s must be a single line", field)
	}
	return nil
}
