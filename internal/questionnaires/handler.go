package questionnaires

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/auth"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Handler exposes the questionnaire endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the questionnaires HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts questionnaire endpoints. Expected to be mounted
// under /api/questionnaire behind RequireAuth.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/submit", h.submit)
	r.Get("/appointment/{appointmentID}/summary", h.summary)
	r.Get("/{appointmentID}", h.get)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AppointmentID == "" {
		http.Error(w, "missing appointment_id", http.StatusBadRequest)
		return
	}

	q, err := h.service.Submit(r.Context(), actor, req)
	if err != nil {
		h.writeServiceError(w, "submit", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(q)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	q, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "appointmentID"))
	if err != nil {
		h.writeServiceError(w, "get", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(q)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	result, err := h.service.Summary(r.Context(), actor, chi.URLParam(r, "appointmentID"))
	if err != nil {
		h.writeServiceError(w, "summary", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, appointments.ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "questionnaire not found for this appointment", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "not authorized for this questionnaire", http.StatusForbidden)
	default:
		h.logger.Error("questionnaires handler: "+op, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func actorFromContext(r *http.Request) (Actor, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: claims.Subject, Role: claims.Role}, true
}
