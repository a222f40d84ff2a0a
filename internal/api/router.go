package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"rowguard/internal/middleware"
)

// RouterConfig holds the pieces the router assembles.
type RouterConfig struct {
	Handler *Handler
	Auth    *middleware.Authenticator
	Rate    middleware.RateLimitConfig
	Logger  *slog.Logger

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	// CORSOrigins lists allowed origins; empty disables cross-origin access.
	CORSOrigins []string
}

// NewRouter assembles the chi router: public health and metrics endpoints,
// then the authenticated API under /v1. Anonymous requests still enter /v1;
// the evaluator denies and audits them.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	limiter := middleware.NewRateLimiter(cfg.Rate)
	r.Route("/v1", func(r chi.Router) {
		r.Use(cfg.Auth.Middleware)
		r.Use(middleware.RequestLogger(cfg.Logger))
		r.Use(limiter.Middleware)
		mountRoutes(r, cfg.Handler)
	})
	return r
}

func mountRoutes(r chi.Router, h *Handler) {
	r.Route("/credentials", func(r chi.Router) {
		r.Post("/", h.CreateCredential)
		r.Get("/", h.ListCredentials)
		r.Get("/{credentialID}", h.GetCredential)
		r.Patch("/{credentialID}", h.UpdateCredential)
		r.Delete("/{credentialID}", h.DeleteCredential)
	})

	r.Route("/teams", func(r chi.Router) {
		r.Post("/", h.CreateTeam)
		r.Get("/", h.ListTeams)
		r.Get("/{teamID}", h.GetTeam)
		r.Delete("/{teamID}", h.DeleteTeam)
		r.Get("/{teamID}/members", h.ListTeamMembers)
		r.Post("/{teamID}/members", h.AddTeamMember)
		r.Delete("/{teamID}/members/{userID}", h.RemoveTeamMember)
	})

	r.Route("/audit", func(r chi.Router) {
		r.Get("/entries", h.ListAuditEntries)
		r.Get("/summary", h.AuditSummary)
	})

	r.Route("/apikeys", func(r chi.Router) {
		r.Post("/", h.CreateAPIKey)
		r.Get("/", h.ListAPIKeys)
		r.Delete("/{keyID}", h.DeleteAPIKey)
	})
}
