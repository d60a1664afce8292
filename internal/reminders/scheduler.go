package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aurorahealth/medscheduler/internal/agents"
	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/content"
	"github.com/aurorahealth/medscheduler/internal/notify"
	"github.com/aurorahealth/medscheduler/internal/users"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// ErrForbidden indicates the actor may not manage reminders for the
// appointment.
var ErrForbidden = errors.New("reminders: forbidden")

// FireAt computes the reminder fire instant: the appointment instant in
// UTC minus the lead hours. An unparseable label degrades to now, so a
// record is always created even if it fires early.
func FireAt(date, timeLabel string, leadHours int, now time.Time) time.Time {
	tod, err := appointments.ParseClockLabel(timeLabel)
	if err != nil {
		return now.UTC()
	}
	instant, err := tod.Instant(date)
	if err != nil {
		return now.UTC()
	}
	return instant.Add(-time.Duration(leadHours) * time.Hour)
}

type appointmentGetter interface {
	Get(ctx context.Context, id string) (*appointments.Appointment, error)
}

type userGetter interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// Scheduler creates reminder records and handles the immediate-send
// path. The background dispatch loop lives in Dispatcher.
type Scheduler struct {
	store        *Store
	appointments appointmentGetter
	users        userGetter
	agents       agents.Dispatcher
	generator    *content.Generator
	email        notify.EmailSender
	now          func() time.Time
	logger       *logging.Logger
}

// NewScheduler wires the reminder scheduler.
func NewScheduler(store *Store, appts appointmentGetter, userStore userGetter, dispatcher agents.Dispatcher, generator *content.Generator, email notify.EmailSender, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		store:        store,
		appointments: appts,
		users:        userStore,
		agents:       dispatcher,
		generator:    generator,
		email:        email,
		now:          time.Now,
		logger:       logger,
	}
}

// Actor identifies the authenticated caller.
type Actor struct {
	ID   string
	Role users.Role
}

// ScheduleRequest carries the scheduling parameters.
type ScheduleRequest struct {
	AppointmentID string `json:"appointment_id"`
	Channel       string `json:"reminder_type"`
	LeadHours     int    `json:"hours_before"`
}

// Schedule creates a scheduled reminder for an appointment. If the
// computed fire instant has already passed, the reminder is delivered
// right away instead of waiting for the next poll.
func (s *Scheduler) Schedule(ctx context.Context, actor Actor, req ScheduleRequest) (*Reminder, error) {
	appt, err := s.authorize(ctx, actor, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	channel, err := ParseChannel(req.Channel)
	if err != nil {
		return nil, err
	}
	leadHours := req.LeadHours
	if leadHours <= 0 {
		leadHours = 24
	}

	task := fmt.Sprintf("Schedule a %s reminder for %s's appointment with %s on %s at %s, %d hours before",
		channel, appt.PatientName, appt.DoctorName, appt.Date, appt.Time, leadHours)
	s.agents.Dispatch(ctx, agents.IntentScheduleReminder, task, map[string]any{
		"action":         "schedule-reminder",
		"appointment_id": appt.ID,
		"hours_before":   leadHours,
	})

	now := s.now().UTC()
	fireAt := FireAt(appt.Date, appt.Time, leadHours, now)

	reminder := &Reminder{
		AppointmentID:   appt.ID,
		PatientID:       appt.PatientID,
		DoctorID:        appt.DoctorID,
		Channel:         channel,
		LeadHours:       leadHours,
		Status:          StatusScheduled,
		FireAt:          fireAt.Format(time.RFC3339Nano),
		AppointmentDate: appt.Date,
		AppointmentTime: appt.Time,
		Specialty:       appt.Specialty,
		Reason:          appt.Reason,
		CreatedBy:       actor.ID,
	}
	if err := s.store.Create(ctx, reminder); err != nil {
		return nil, err
	}
	s.logger.Info("reminder scheduled", "reminder_id", reminder.ID, "fire_at", reminder.FireAt)

	if !fireAt.After(now) {
		s.deliverNow(ctx, reminder, appt)
	}
	return reminder, nil
}

// SendImmediate sends a reminder right away and records it as sent,
// bypassing the scheduled-fire mechanism.
func (s *Scheduler) SendImmediate(ctx context.Context, actor Actor, appointmentID, channelRaw string) (*Reminder, error) {
	appt, err := s.authorize(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	channel, err := ParseChannel(channelRaw)
	if err != nil {
		return nil, err
	}

	task := fmt.Sprintf("Send an immediate %s reminder for %s's appointment with %s on %s at %s",
		channel, appt.PatientName, appt.DoctorName, appt.Date, appt.Time)
	s.agents.Dispatch(ctx, agents.IntentSendImmediate, task, map[string]any{
		"action":         "send-immediate",
		"appointment_id": appt.ID,
	})

	now := s.now().UTC()
	reminder := &Reminder{
		AppointmentID:   appt.ID,
		PatientID:       appt.PatientID,
		DoctorID:        appt.DoctorID,
		Channel:         channel,
		Status:          StatusSent,
		FireAt:          now.Format(time.RFC3339Nano),
		SentAt:          now.Format(time.RFC3339Nano),
		AppointmentDate: appt.Date,
		AppointmentTime: appt.Time,
		Specialty:       appt.Specialty,
		Reason:          appt.Reason,
		Immediate:       true,
		CreatedBy:       actor.ID,
	}

	s.sendEmail(ctx, reminder, appt.PatientName, appt.DoctorName)

	if err := s.store.Create(ctx, reminder); err != nil {
		return nil, err
	}
	s.logger.Info("immediate reminder sent", "reminder_id", reminder.ID)
	return reminder, nil
}

// deliverNow handles the already-due path of Schedule: send and mark
// sent, best-effort.
func (s *Scheduler) deliverNow(ctx context.Context, reminder *Reminder, appt *appointments.Appointment) {
	if !s.sendEmail(ctx, reminder, appt.PatientName, appt.DoctorName) {
		return
	}
	if err := s.store.MarkSent(ctx, reminder.ID, s.now()); err != nil && !errors.Is(err, ErrAlreadySent) {
		s.logger.Error("failed to mark reminder sent", "reminder_id", reminder.ID, "error", err)
		return
	}
	reminder.Status = StatusSent
	reminder.SentAt = s.now().UTC().Format(time.RFC3339Nano)
}

// sendEmail resolves the patient and delivers the reminder email.
// Returns false when nothing was sent.
func (s *Scheduler) sendEmail(ctx context.Context, reminder *Reminder, patientName, doctorName string) bool {
	if s.email == nil || s.generator == nil {
		return false
	}
	patient, err := s.users.GetByID(ctx, reminder.PatientID)
	if err != nil || patient.Email == "" {
		s.logger.Warn("reminder email skipped: patient unresolved", "reminder_id", reminder.ID, "error", err)
		return false
	}

	email := s.generator.Email(ctx, content.KindReminder, content.EmailFields{
		PatientName: patientName,
		DoctorName:  doctorName,
		Specialty:   reminder.Specialty,
		Date:        reminder.AppointmentDate,
		Time:        reminder.AppointmentTime,
		Reason:      reminder.Reason,
	})
	err = s.email.Send(ctx, notify.EmailMessage{
		To:      patient.Email,
		ToName:  patientName,
		Subject: email.Subject,
		Body:    content.PlainText(email.HTML),
		HTML:    email.HTML,
	})
	if err != nil {
		s.logger.Error("failed to send reminder email", "reminder_id", reminder.ID, "error", err)
		return false
	}
	return true
}

// Logs returns the reminder records visible to the caller.
func (s *Scheduler) Logs(ctx context.Context, actor Actor, appointmentID string) ([]Reminder, error) {
	if appointmentID != "" {
		return s.store.ListByAppointment(ctx, appointmentID)
	}
	switch actor.Role {
	case users.RoleDoctor:
		return s.store.ListByDoctor(ctx, actor.ID)
	case users.RoleAdmin:
		return s.store.ListAll(ctx)
	default:
		return s.store.ListByPatient(ctx, actor.ID)
	}
}

// authorize loads the appointment and checks reminder permissions:
// doctors and admins always, patients only on their own appointments.
func (s *Scheduler) authorize(ctx context.Context, actor Actor, appointmentID string) (*appointments.Appointment, error) {
	if appointmentID == "" {
		return nil, errors.New("reminders: appointment_id required")
	}
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != users.RoleDoctor && actor.Role != users.RoleAdmin && appt.PatientID != actor.ID {
		return nil, ErrForbidden
	}
	return appt, nil
}
