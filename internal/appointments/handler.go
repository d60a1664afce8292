package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurorahealth/medscheduler/internal/auth"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Handler exposes slot listing and booking endpoints.
type Handler struct {
	service *Service
	slots   *SlotGenerator
	logger  *logging.Logger
}

// NewHandler creates the appointments HTTP handler.
func NewHandler(service *Service, slots *SlotGenerator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, slots: slots, logger: logger}
}

// RegisterRoutes mounts appointment endpoints. Expected to be mounted
// under /api behind RequireAuth.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/slots", h.listSlots)
	r.Post("/book", h.book)
	r.Put("/reschedule", h.reschedule)
	r.Delete("/cancel", h.cancel)
	r.Get("/appointments", h.list)
}

func (h *Handler) listSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	specialty := q.Get("specialty")
	if specialty == "" {
		if condition := q.Get("condition"); condition != "" {
			specialty = SpecialtyForCondition(condition)
		}
	}

	slots := h.slots.Generate(r.Context(), q.Get("date"), q.Get("doctor_id"), specialty)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(slots)
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), actor, req)
	if err != nil {
		h.writeServiceError(w, "book", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appt)
}

type rescheduleRequest struct {
	AppointmentID string `json:"appointment_id"`
	NewDate       string `json:"new_date"`
	NewTime       string `json:"new_time"`
	Reason        string `json:"reason,omitempty"`
}

func (h *Handler) reschedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AppointmentID == "" {
		http.Error(w, "missing appointment_id", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Reschedule(r.Context(), actor, req.AppointmentID, req.NewDate, req.NewTime, req.Reason)
	if err != nil {
		h.writeServiceError(w, "reschedule", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	apptID := r.URL.Query().Get("appointment_id")
	if apptID == "" {
		http.Error(w, "missing appointment_id", http.StatusBadRequest)
		return
	}

	if err := h.service.Cancel(r.Context(), actor, apptID, r.URL.Query().Get("reason")); err != nil {
		h.writeServiceError(w, "cancel", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message":        "Appointment cancelled successfully",
		"appointment_id": apptID,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	appts, err := h.service.ListForActor(r.Context(), actor)
	if err != nil {
		h.logger.Error("appointments handler: list", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appts)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "not authorized for this appointment", http.StatusForbidden)
	case errors.Is(err, ErrInvalidTime):
		http.Error(w, "invalid time", http.StatusBadRequest)
	default:
		h.logger.Error("appointments handler: "+op, "error", err)
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
