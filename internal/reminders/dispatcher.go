package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aurorahealth/medscheduler/internal/content"
	"github.com/aurorahealth/medscheduler/internal/notify"
	"github.com/aurorahealth/medscheduler/internal/observability/metrics"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Dispatcher is the background loop that delivers due reminders. One
// instance runs per process, started at startup and cancelled via
// context at shutdown.
type Dispatcher struct {
	store     *Store
	users     userGetter
	generator *content.Generator
	email     notify.EmailSender
	metrics   *metrics.ReminderMetrics
	interval  time.Duration
	batchSize int32
	now       func() time.Time
	logger    *logging.Logger
}

// NewDispatcher wires the dispatch loop.
func NewDispatcher(store *Store, userStore userGetter, generator *content.Generator, email notify.EmailSender, m *metrics.ReminderMetrics, interval time.Duration, batchSize int, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Dispatcher{
		store:     store,
		users:     userStore,
		generator: generator,
		email:     email,
		metrics:   m,
		interval:  interval,
		batchSize: int32(batchSize),
		now:       time.Now,
		logger:    logger,
	}
}

// Run polls until the context is cancelled. Cycle errors are logged,
// never fatal.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("reminder dispatcher started", "interval", d.interval.String())
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("reminder dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.ProcessDue(ctx); err != nil {
				d.logger.Warn("reminder dispatch cycle failed", "error", err)
			}
		}
	}
}

// ProcessDue runs one poll cycle: fetch a page of scheduled reminders,
// deliver the ones whose fire instant has passed, and mark them sent.
// Returns the number delivered.
func (d *Dispatcher) ProcessDue(ctx context.Context) (int, error) {
	start := d.now()
	defer func() {
		d.metrics.ObservePollCycle(time.Since(start).Seconds())
	}()

	// One cycle may not outlive the poll interval; a stalled LLM or SMTP
	// call gets cut off instead of blocking the loop.
	ctx, cancel := context.WithTimeout(ctx, d.interval)
	defer cancel()

	scheduled, err := d.store.ListScheduled(ctx, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("reminders dispatcher: list scheduled: %w", err)
	}

	now := d.now().UTC()
	sent := 0
	for i := range scheduled {
		r := &scheduled[i]
		fireAt, err := r.FireTime()
		if err != nil {
			d.logger.Warn("reminder has invalid fire time, skipping", "reminder_id", r.ID, "error", err)
			d.metrics.ObserveDispatch("invalid")
			continue
		}
		if fireAt.After(now) {
			continue
		}
		if err := d.processOne(ctx, r); err != nil {
			// The record stays scheduled and is retried next poll.
			d.logger.Error("failed to dispatch reminder", "reminder_id", r.ID, "error", err)
			d.metrics.ObserveDispatch("error")
			continue
		}
		sent++
	}
	if sent > 0 {
		d.logger.Info("reminder dispatch cycle complete", "sent", sent, "scanned", len(scheduled))
	}
	return sent, nil
}

func (d *Dispatcher) processOne(ctx context.Context, r *Reminder) error {
	patientName, doctorName := "Patient", "Doctor"
	patientEmail := ""
	specialty := r.Specialty

	if patient, err := d.users.GetByID(ctx, r.PatientID); err == nil {
		patientEmail = patient.Email
		if patient.FullName != "" {
			patientName = patient.FullName
		}
	}
	if r.DoctorID != "" {
		if doctor, err := d.users.GetByID(ctx, r.DoctorID); err == nil {
			if doctor.FullName != "" {
				doctorName = doctor.FullName
			}
			if doctor.Specialty != "" {
				specialty = doctor.Specialty
			}
		}
	}
	if patientEmail == "" {
		return errors.New("no patient email on record")
	}

	email := d.generator.Email(ctx, content.KindReminder, content.EmailFields{
		PatientName: patientName,
		DoctorName:  doctorName,
		Specialty:   specialty,
		Date:        r.AppointmentDate,
		Time:        r.AppointmentTime,
		Reason:      r.Reason,
	})
	err := d.email.Send(ctx, notify.EmailMessage{
		To:      patientEmail,
		ToName:  patientName,
		Subject: email.Subject,
		Body:    content.PlainText(email.HTML),
		HTML:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if err := d.store.MarkSent(ctx, r.ID, d.now()); err != nil {
		if errors.Is(err, ErrAlreadySent) {
			d.metrics.ObserveDispatch("duplicate")
			return nil
		}
		return fmt.Errorf("mark sent: %w", err)
	}

	d.metrics.ObserveDispatch("sent")
	d.logger.Info("reminder sent", "reminder_id", r.ID, "to", patientEmail,
		"appointment_date", r.AppointmentDate, "appointment_time", r.AppointmentTime)
	return nil
}
