package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
)

// DefaultInterests seed a trip request that names none.
var DefaultInterests = []string{"culture", "food"}

// CheckDays validates a trip length. Callers use it directly when the caller
// set the length explicitly, so that 0 is rejected rather than defaulted.
func CheckDays(days int) error {
	if days < model.MinTripDays || days > model.MaxTripDays {
		return fmt.Errorf("days must be between %d and %d, got %d: %w",
			model.MinTripDays, model.MaxTripDays, days, model.ErrValidation)
	}
	return nil
}

// NormalizeTrip fills form defaults and validates the request. A zero Days
// means the field was omitted. Errors wrap model.ErrValidation.
func NormalizeTrip(in model.TripRequest) (model.TripRequest, error) {
	out := in
	out.Destination = strings.TrimSpace(in.Destination)
	out.Departure = strings.TrimSpace(in.Departure)
	if out.Destination == "" {
		return out, fmt.Errorf("destination is required: %w", model.ErrValidation)
	}

	if out.Days == 0 {
		out.Days = model.DefaultTripDays
	}
	if err := CheckDays(out.Days); err != nil {
		return out, err
	}

	if out.Budget == "" {
		out.Budget = model.BudgetLow
	}
	if !slices.Contains(model.Budgets, out.Budget) {
		return out, fmt.Errorf("unknown budget %q: %w", out.Budget, model.ErrValidation)
	}
	if out.Style == "" {
		out.Style = model.StyleExplorer
	}
	if !slices.Contains(model.Styles, out.Style) {
		return out, fmt.Errorf("unknown travel style %q: %w", out.Style, model.ErrValidation)
	}

	interests := make([]string, 0, len(in.Interests))
	for _, i := range in.Interests {
		if i = strings.TrimSpace(i); i != "" && !slices.Contains(interests, i) {
			interests = append(interests, i)
		}
	}
	if len(interests) == 0 {
		interests = append(interests, DefaultInterests...)
	}
	out.Interests = interests
	return out, nil
}
