package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aurorahealth/medscheduler/internal/analytics"
	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/auth"
	httpmiddleware "github.com/aurorahealth/medscheduler/internal/http/middleware"
	"github.com/aurorahealth/medscheduler/internal/questionnaires"
	"github.com/aurorahealth/medscheduler/internal/reminders"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	TokenIssuer          *auth.TokenIssuer
	AuthHandler          *auth.Handler
	AppointmentsHandler  *appointments.Handler
	RemindersHandler     *reminders.Handler
	QuestionnaireHandler *questionnaires.Handler
	AnalyticsHandler     *analytics.Handler
	MetricsHandler       http.Handler
	CORSAllowedOrigins   []string

	// Requests/sec and burst for the auth endpoints. Zero disables limiting.
	AuthRateLimit float64
	AuthRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Recoverer(cfg.Logger))
	r.Use(chimiddleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Auth endpoints share one mount: register/login are public behind the
	// rate limiter, /me requires a token.
	r.Route("/auth", func(ar chi.Router) {
		ar.Group(func(public chi.Router) {
			if cfg.AuthRateLimit > 0 {
				public.Use(httpmiddleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst))
			}
			cfg.AuthHandler.RegisterRoutes(public)
		})
		ar.Group(func(private chi.Router) {
			private.Use(auth.RequireAuth(cfg.TokenIssuer))
			cfg.AuthHandler.RegisterProtectedRoutes(private)
		})
	})

	// Authenticated API surface
	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireAuth(cfg.TokenIssuer))
		cfg.AppointmentsHandler.RegisterRoutes(api)
		api.Route("/reminder", cfg.RemindersHandler.RegisterRoutes)
		api.Route("/questionnaire", cfg.QuestionnaireHandler.RegisterRoutes)
		api.Route("/analytics", cfg.AnalyticsHandler.RegisterRoutes)
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
