package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aurorahealth/medscheduler/internal/auth"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Handler exposes dashboard and stats endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the analytics HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts analytics endpoints. Expected to be mounted
// under /api/analytics behind RequireAuth.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/stats", h.stats)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	report, err := h.service.Dashboard(r.Context(), actor)
	if err != nil {
		h.logger.Error("analytics handler: dashboard", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid days parameter", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	stats, err := h.service.WindowStats(r.Context(), actor, days)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			http.Error(w, "doctor or admin role required", http.StatusForbidden)
			return
		}
		h.logger.Error("analytics handler: stats", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func actorFromContext(r *http.Request) (Actor, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: claims.Subject, Role: claims.Role}, true
}
