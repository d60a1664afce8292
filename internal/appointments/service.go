package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/aurorahealth/medscheduler/internal/agents"
	"github.com/aurorahealth/medscheduler/internal/content"
	"github.com/aurorahealth/medscheduler/internal/notify"
	"github.com/aurorahealth/medscheduler/internal/users"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// ErrForbidden indicates the actor may not act on the appointment.
var ErrForbidden = errors.New("appointments: forbidden")

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role users.Role
}

type userGetter interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// Service implements booking, rescheduling, and cancellation on top of
// the store, dispatching agents and confirmation email as side effects.
type Service struct {
	store     *Store
	users     userGetter
	agents    agents.Dispatcher
	generator *content.Generator
	email     notify.EmailSender
	logger    *logging.Logger
}

// NewService wires the appointment service.
func NewService(store *Store, userStore userGetter, dispatcher agents.Dispatcher, generator *content.Generator, email notify.EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:     store,
		users:     userStore,
		agents:    dispatcher,
		generator: generator,
		email:     email,
		logger:    logger,
	}
}

// BookRequest carries the booking parameters after JSON decoding.
type BookRequest struct {
	PatientID   string `json:"patient_id"`
	DoctorID    string `json:"doctor_id"`
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Reason      string `json:"reason,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
}

// Book creates a confirmed appointment. Patients may only book for
// themselves. The confirmation email is best-effort and never fails
// the booking.
func (s *Service) Book(ctx context.Context, actor Actor, req BookRequest) (*Appointment, error) {
	if actor.Role == users.RolePatient && req.PatientID != actor.ID {
		return nil, ErrForbidden
	}
	if _, err := ParseClockLabel(req.Time); err != nil {
		return nil, err
	}

	task := fmt.Sprintf("Book an appointment for %s with %s on %s at %s", req.PatientName, req.DoctorName, req.Date, req.Time)
	result := s.agents.Dispatch(ctx, agents.IntentBook, task, map[string]any{
		"action":     "book",
		"patient_id": req.PatientID,
		"doctor_id":  req.DoctorID,
		"date":       req.Date,
		"time":       req.Time,
	})
	s.logger.Info("booking agent result", "agent", result.Agent, "status", result.Status)

	appt := &Appointment{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		PatientName: req.PatientName,
		DoctorName:  req.DoctorName,
		Date:        req.Date,
		Time:        req.Time,
		Status:      StatusConfirmed,
		Reason:      req.Reason,
		Specialty:   req.Specialty,
	}
	if err := s.store.Create(ctx, appt); err != nil {
		return nil, err
	}
	s.logger.Info("appointment booked", "appointment_id", appt.ID)

	s.sendConfirmation(ctx, appt)
	return appt, nil
}

func (s *Service) sendConfirmation(ctx context.Context, appt *Appointment) {
	if s.email == nil || s.generator == nil {
		return
	}
	patient, err := s.users.GetByID(ctx, appt.PatientID)
	if err != nil || patient.Email == "" {
		s.logger.Warn("skipping confirmation email: patient unresolved", "appointment_id", appt.ID, "error", err)
		return
	}

	email := s.generator.Email(ctx, content.KindConfirmation, content.EmailFields{
		PatientName: appt.PatientName,
		DoctorName:  appt.DoctorName,
		Specialty:   appt.Specialty,
		Date:        appt.Date,
		Time:        appt.Time,
		Reason:      appt.Reason,
	})
	err = s.email.Send(ctx, notify.EmailMessage{
		To:      patient.Email,
		ToName:  appt.PatientName,
		Subject: email.Subject,
		Body:    content.PlainText(email.HTML),
		HTML:    email.HTML,
	})
	if err != nil {
		s.logger.Error("failed to send confirmation email", "appointment_id", appt.ID, "error", err)
		return
	}
	s.logger.Info("confirmation email sent", "appointment_id", appt.ID)
}

// Reschedule moves an appointment to a new date and time.
func (s *Service) Reschedule(ctx context.Context, actor Actor, apptID, newDate, newTime, reason string) (*Appointment, error) {
	appt, err := s.authorize(ctx, actor, apptID)
	if err != nil {
		return nil, err
	}
	if _, err := ParseClockLabel(newTime); err != nil {
		return nil, err
	}

	task := fmt.Sprintf("Reschedule appointment %s to %s at %s", apptID, newDate, newTime)
	if reason != "" {
		task += ". Reason: " + reason
	}
	s.agents.Dispatch(ctx, agents.IntentReschedule, task, map[string]any{
		"action":         "reschedule",
		"appointment_id": apptID,
		"new_date":       newDate,
		"new_time":       newTime,
		"reason":         reason,
	})

	if err := s.store.UpdateSchedule(ctx, apptID, newDate, newTime); err != nil {
		return nil, err
	}
	s.logger.Info("appointment rescheduled", "appointment_id", apptID)

	appt.Date = newDate
	appt.Time = newTime
	return appt, nil
}

// Cancel transitions an appointment to cancelled. The record is kept.
func (s *Service) Cancel(ctx context.Context, actor Actor, apptID, reason string) error {
	if _, err := s.authorize(ctx, actor, apptID); err != nil {
		return err
	}

	task := fmt.Sprintf("Cancel appointment %s", apptID)
	if reason != "" {
		task += ". Reason: " + reason
	}
	s.agents.Dispatch(ctx, agents.IntentCancel, task, map[string]any{
		"action":         "cancel",
		"appointment_id": apptID,
		"reason":         reason,
	})

	if err := s.store.UpdateStatus(ctx, apptID, StatusCancelled); err != nil {
		return err
	}
	s.logger.Info("appointment cancelled", "appointment_id", apptID)
	return nil
}

// authorize fetches the appointment and checks the actor may mutate it.
// Admins may act on anything; otherwise the actor must be the patient
// or the doctor on the record.
func (s *Service) authorize(ctx context.Context, actor Actor, apptID string) (*Appointment, error) {
	appt, err := s.store.Get(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if actor.Role != users.RoleAdmin && appt.PatientID != actor.ID && appt.DoctorID != actor.ID {
		return nil, ErrForbidden
	}
	return appt, nil
}

// ListForActor returns the appointments visible to the caller: patients
// and doctors see their own, admins see everything.
func (s *Service) ListForActor(ctx context.Context, actor Actor) ([]Appointment, error) {
	switch actor.Role {
	case users.RoleDoctor:
		return s.store.ListByDoctor(ctx, actor.ID)
	case users.RoleAdmin:
		return s.store.ListAll(ctx)
	default:
		return s.store.ListByPatient(ctx, actor.ID)
	}
}
