package api

import (
	"errors"
	"net/http"

	"github.com/PrathmeshSose/ai-travel-agent/internal/api/respond"
	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/synth"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var se *synth.Error
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrMissingCredential):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	respond.WriteError(w, status, msg)
}
