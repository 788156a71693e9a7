package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/api/respond"
	"github.com/PrathmeshSose/ai-travel-agent/internal/api/validate"
	"github.com/PrathmeshSose/ai-travel-agent/internal/document"
	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/services"
)

// MismatchHeader carries the number of day markers whose written number
// disagreed with their position in a calendar export.
const MismatchHeader = "X-Itinerary-Day-Mismatches"

// Locator resolves a display location for a client address.
type Locator interface {
	Locate(ctx context.Context, ip string) (string, bool)
}

// HealthReporter exposes cached service health.
type HealthReporter interface {
	IsHealthy() bool
	Unhealthy() []string
}

// Handler is the HTTP transport over the session and planner services.
type Handler struct {
	sessions *services.SessionService
	planner  *services.PlannerService
	locator  Locator
	health   HealthReporter
	log      zerolog.Logger
	clientIP func(*http.Request) string
}

type sessionResponse struct {
	SessionID            string      `json:"sessionId"`
	CompletionConfigured bool        `json:"completionConfigured"`
	SearchConfigured     bool        `json:"searchConfigured"`
	Plan                 *model.Plan `json:"plan,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

func toSessionResponse(s *model.Session) sessionResponse {
	return sessionResponse{
		SessionID:            s.SessionID,
		CompletionConfigured: s.CompletionKey != "",
		SearchConfigured:     s.SearchKey != "",
		Plan:                 s.Plan,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// decodeJSON reads the request body into v, writing 413 when the body
// exceeds the router's cap and 400 when it is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respond.WriteError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	respond.WriteBadRequest(w, "Invalid JSON")
	return false
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["sessionId"]
	if err := validate.SessionID(id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return "", false
	}
	return id, true
}

// CreateSession POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("create session")
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// GetSession GET /api/sessions/{sessionId}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

// DeleteSession DELETE /api/sessions/{sessionId}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveCredentials PUT /api/sessions/{sessionId}/credentials
func (h *Handler) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req services.CredentialUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CompletionKey == nil && req.SearchKey == nil {
		respond.WriteBadRequest(w, "completionKey or searchKey is required")
		return
	}
	if err := validate.Credential("completionKey", req.CompletionKey); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Credential("searchKey", req.SearchKey); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	sess, err := h.sessions.SaveCredentials(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

// ClearCredentials DELETE /api/sessions/{sessionId}/credentials
func (h *Handler) ClearCredentials(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.sessions.ClearCredentials(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

// planRequest tells an omitted day count, which takes the default, apart
// from an explicit one, which must be in range.
type planRequest struct {
	model.TripRequest
	Days *int `json:"days"`
}

// GeneratePlan POST /api/sessions/{sessionId}/plan
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req planRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	trip := req.TripRequest
	if req.Days != nil {
		if err := services.CheckDays(*req.Days); err != nil {
			writeServiceError(w, err)
			return
		}
		trip.Days = *req.Days
	}
	plan, err := h.planner.Generate(r.Context(), id, trip)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, plan)
}

// GetPlan GET /api/sessions/{sessionId}/plan
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	plan, err := h.planner.Current(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, plan)
}

// ResetPlan DELETE /api/sessions/{sessionId}/plan
func (h *Handler) ResetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.planner.Reset(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlanCalendar GET /api/sessions/{sessionId}/plan/calendar?start=YYYY-MM-DD
func (h *Handler) PlanCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	start, err := validate.StartDate(r.URL.Query().Get("start"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	d, err := h.planner.ExportCalendar(r.Context(), id, start)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeDownload(w, d)
}

// PlanText GET /api/sessions/{sessionId}/plan/text
func (h *Handler) PlanText(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	d, err := h.planner.ExportText(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeDownload(w, d)
}

// PlanPDF GET /api/sessions/{sessionId}/plan/pdf
func (h *Handler) PlanPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	d, err := h.planner.ExportPDF(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeDownload(w, d)
}

type calendarRequest struct {
	Itinerary   string `json:"itinerary"`
	Destination string `json:"destination"`
	Start       string `json:"start,omitempty"`
}

// ExportCalendar POST /api/calendar
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	var req calendarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Itinerary(req.Itinerary); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	start, err := validate.StartDate(req.Start)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	h.writeDownload(w, h.planner.Calendar(req.Itinerary, req.Destination, start))
}

func (h *Handler) writeDownload(w http.ResponseWriter, d *services.Download) {
	if d.ContentType == document.ContentTypeCalendar {
		w.Header().Set(MismatchHeader, strconv.Itoa(len(d.Mismatches)))
	}
	respond.WriteAttachment(w, d.ContentType, d.Filename, d.Body)
}

// Location GET /api/location
func (h *Handler) Location(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.locator.Locate(r.Context(), h.clientIP(r))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"location": loc})
}

// Health GET /api/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	if h.health == nil || h.health.IsHealthy() {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "UP",
			"message":   "Service is healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
		"status":    "DOWN",
		"message":   "One or more dependencies unavailable",
		"down":      h.health.Unhealthy(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
