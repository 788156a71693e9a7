// Package api exposes the planner over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/api/ratelimit"
	"github.com/PrathmeshSose/ai-travel-agent/internal/api/recovery"
	"github.com/PrathmeshSose/ai-travel-agent/internal/api/validate"
	"github.com/PrathmeshSose/ai-travel-agent/internal/geo"
	"github.com/PrathmeshSose/ai-travel-agent/internal/services"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Sessions         *services.SessionService
	Planner          *services.PlannerService
	Locator          Locator
	Health           HealthReporter
	Log              zerolog.Logger
	AllowedOrigins   []string
	PlanPerMinute    int
	PlanBurst        int
	// SessionPerMinute limits session creation per client; 0 disables it.
	SessionPerMinute int
	SessionBurst     int
	// ClientIP keys rate limits and location lookups. Defaults to geo.ClientIP.
	ClientIP         func(*http.Request) string
}

// NewRouter registers every route and wraps them in recovery, request
// logging, a body size cap and CORS.
func NewRouter(d Deps) http.Handler {
	clientIP := d.ClientIP
	if clientIP == nil {
		clientIP = geo.ClientIP
	}
	h := &Handler{
		sessions: d.Sessions,
		planner:  d.Planner,
		locator:  d.Locator,
		health:   d.Health,
		log:      d.Log,
		clientIP: clientIP,
	}
	limiter := ratelimit.New(d.PlanPerMinute, d.PlanBurst, clientIP)
	var createSession http.Handler = http.HandlerFunc(h.CreateSession)
	if d.SessionPerMinute > 0 {
		createSession = ratelimit.New(d.SessionPerMinute, d.SessionBurst, clientIP).Limit(createSession)
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/location", h.Location).Methods(http.MethodGet)
	api.HandleFunc("/calendar", h.ExportCalendar).Methods(http.MethodPost)

	api.Handle("/sessions", createSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionId}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionId}", h.DeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{sessionId}/credentials", h.SaveCredentials).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{sessionId}/credentials", h.ClearCredentials).Methods(http.MethodDelete)

	api.Handle("/sessions/{sessionId}/plan", limiter.Limit(http.HandlerFunc(h.GeneratePlan))).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionId}/plan", h.GetPlan).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionId}/plan", h.ResetPlan).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{sessionId}/plan/calendar", h.PlanCalendar).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionId}/plan/text", h.PlanText).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionId}/plan/pdf", h.PlanPDF).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", MismatchHeader, "Retry-After"},
	})

	return recovery.Middleware(requestLogger(d.Log)(limitBody(validate.MaxBodyBytes)(corsHandler.Handler(r))))
}
