package reminders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/auth"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Handler exposes reminder scheduling and log endpoints.
type Handler struct {
	scheduler *Scheduler
	logger    *logging.Logger
}

// NewHandler creates the reminders HTTP handler.
func NewHandler(scheduler *Scheduler, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{scheduler: scheduler, logger: logger}
}

// RegisterRoutes mounts reminder endpoints. Expected to be mounted
// under /api/reminder behind RequireAuth.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/schedule", h.schedule)
	r.Post("/send", h.sendImmediate)
	r.Get("/logs", h.logs)
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AppointmentID == "" {
		http.Error(w, "missing appointment_id", http.StatusBadRequest)
		return
	}

	reminder, err := h.scheduler.Schedule(r.Context(), actor, req)
	if err != nil {
		h.writeServiceError(w, "schedule", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"message":     "Reminder scheduled successfully",
		"reminder_id": reminder.ID,
		"reminder":    reminder,
	})
}

type sendRequest struct {
	AppointmentID string `json:"appointment_id"`
	Channel       string `json:"reminder_type"`
}

func (h *Handler) sendImmediate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AppointmentID == "" {
		http.Error(w, "missing appointment_id", http.StatusBadRequest)
		return
	}

	reminder, err := h.scheduler.SendImmediate(r.Context(), actor, req.AppointmentID, req.Channel)
	if err != nil {
		h.writeServiceError(w, "send", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message":     "Reminder sent successfully",
		"reminder_id": reminder.ID,
		"reminder":    reminder,
	})
}

func (h *Handler) logs(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	reminders, err := h.scheduler.Logs(r.Context(), actor, r.URL.Query().Get("appointment_id"))
	if err != nil {
		h.logger.Error("reminders handler: logs", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"reminders": reminders,
		"count":     len(reminders),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, appointments.ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "not authorized for this appointment", http.StatusForbidden)
	case errors.Is(err, ErrInvalidChannel):
		http.Error(w, "invalid reminder_type", http.StatusBadRequest)
	default:
		h.logger.Error("reminders handler: "+op, "error", err)
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
