package questionnaires

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aurorahealth/medscheduler/internal/agents"
	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/content"
	"github.com/aurorahealth/medscheduler/internal/users"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// ErrForbidden indicates the actor may not access the questionnaire.
var ErrForbidden = errors.New("questionnaires: forbidden")

// Actor identifies the authenticated caller.
type Actor struct {
	ID   string
	Role users.Role
}

type appointmentGetter interface {
	Get(ctx context.Context, id string) (*appointments.Appointment, error)
}

// Service implements questionnaire submission and summary generation.
type Service struct {
	store        *Store
	appointments appointmentGetter
	agents       agents.Dispatcher
	generator    *content.Generator
	logger       *logging.Logger
}

// NewService wires the questionnaire service.
func NewService(store *Store, appts appointmentGetter, dispatcher agents.Dispatcher, generator *content.Generator, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:        store,
		appointments: appts,
		agents:       dispatcher,
		generator:    generator,
		logger:       logger,
	}
}

// SubmitRequest carries the intake fields from the patient.
type SubmitRequest struct {
	AppointmentID      string `json:"appointment_id"`
	ChiefComplaint     string `json:"chief_complaint,omitempty"`
	Symptoms           string `json:"symptoms,omitempty"`
	MedicalHistory     string `json:"medical_history,omitempty"`
	CurrentMedications string `json:"current_medications,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
	AdditionalNotes    string `json:"additional_notes,omitempty"`
}

// Submit upserts a questionnaire for the actor's own appointment. Only
// the patient on the appointment may submit. A summary is generated at
// submission time.
func (s *Service) Submit(ctx context.Context, actor Actor, req SubmitRequest) (*Questionnaire, error) {
	appt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != users.RolePatient || appt.PatientID != actor.ID {
		return nil, ErrForbidden
	}

	q := &Questionnaire{
		AppointmentID:      appt.ID,
		PatientID:          actor.ID,
		ChiefComplaint:     req.ChiefComplaint,
		Symptoms:           req.Symptoms,
		MedicalHistory:     req.MedicalHistory,
		CurrentMedications: req.CurrentMedications,
		Allergies:          req.Allergies,
		AdditionalNotes:    req.AdditionalNotes,
		SubmittedAt:        time.Now().UTC().Format(time.RFC3339Nano),
	}

	task := fmt.Sprintf("Process the pre-visit questionnaire for appointment %s and produce a clinical summary", appt.ID)
	s.agents.Dispatch(ctx, agents.IntentProcessQuestionnaire, task, map[string]any{
		"action":         "process-questionnaire",
		"appointment_id": appt.ID,
	})

	q.Summary = s.summarize(ctx, q)

	if err := s.store.Upsert(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("questionnaire submitted", "questionnaire_id", q.ID, "appointment_id", appt.ID)
	return q, nil
}

// Get returns the questionnaire for an appointment. Patients may only
// read their own; doctors and admins may read any.
func (s *Service) Get(ctx context.Context, actor Actor, appointmentID string) (*Questionnaire, error) {
	if _, err := s.authorizeRead(ctx, actor, appointmentID); err != nil {
		return nil, err
	}
	return s.store.GetByAppointment(ctx, appointmentID)
}

// SummaryResult is the summary endpoint payload.
type SummaryResult struct {
	AppointmentID string `json:"appointment_id"`
	Summary       string `json:"summary"`
	GeneratedAt   string `json:"generated_at"`
}

// Summary returns the stored summary, generating and persisting one on
// demand when absent.
func (s *Service) Summary(ctx context.Context, actor Actor, appointmentID string) (*SummaryResult, error) {
	if _, err := s.authorizeRead(ctx, actor, appointmentID); err != nil {
		return nil, err
	}
	q, err := s.store.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	summary := q.Summary
	if summary == "" {
		summary = s.summarize(ctx, q)
		if err := s.store.SetSummary(ctx, q.ID, summary); err != nil {
			// The caller still gets the summary; only persistence failed.
			s.logger.Error("failed to persist questionnaire summary", "questionnaire_id", q.ID, "error", err)
		}
	}

	return &SummaryResult{
		AppointmentID: appointmentID,
		Summary:       summary,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

func (s *Service) summarize(ctx context.Context, q *Questionnaire) string {
	return s.generator.Summary(ctx, content.SummaryFields{
		ChiefComplaint:     q.ChiefComplaint,
		Symptoms:           q.Symptoms,
		MedicalHistory:     q.MedicalHistory,
		CurrentMedications: q.CurrentMedications,
	})
}

func (s *Service) authorizeRead(ctx context.Context, actor Actor, appointmentID string) (*appointments.Appointment, error) {
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role == users.RolePatient && appt.PatientID != actor.ID {
		return nil, ErrForbidden
	}
	return appt, nil
}
