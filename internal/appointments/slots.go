package appointments

import (
	"context"
	"time"

	"github.com/aurorahealth/medscheduler/internal/users"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Slot is a derived availability record, never persisted.
type Slot struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	DoctorID   string `json:"doctor_id"`
	DoctorName string `json:"doctor_name"`
	Specialty  string `json:"specialty,omitempty"`
	Available  bool   `json:"is_available"`
}

type doctorDirectory interface {
	ListDoctors(ctx context.Context, specialty string) ([]users.User, error)
}

type confirmedLister interface {
	ListConfirmedByDate(ctx context.Context, date string) ([]Appointment, error)
}

// SlotGeneratorConfig controls the synthetic doctor returned when the
// directory is empty.
type SlotGeneratorConfig struct {
	DemoDoctorEnabled bool
	DemoDoctorName    string
	DemoSpecialty     string
}

// SlotGenerator produces the bookable half-hour grid for a clinic day.
// Generate never returns an error; internal failures degrade to a fixed
// default slot set so the booking UI stays usable.
type SlotGenerator struct {
	doctors      doctorDirectory
	appointments confirmedLister
	cfg          SlotGeneratorConfig
	now          func() time.Time
	logger       *logging.Logger
}

// NewSlotGenerator builds the generator.
func NewSlotGenerator(doctors doctorDirectory, appointments confirmedLister, cfg SlotGeneratorConfig, logger *logging.Logger) *SlotGenerator {
	if logger == nil {
		logger = logging.Default()
	}
	return &SlotGenerator{
		doctors:      doctors,
		appointments: appointments,
		cfg:          cfg,
		now:          time.Now,
		logger:       logger,
	}
}

const (
	gridStartHour = 9
	gridEndHour   = 17
)

// gridLabels returns the full half-hour grid from 09:00 through 17:00.
// 17:30 is excluded.
func gridLabels() []string {
	labels := make([]string, 0, 17)
	for hour := gridStartHour; hour <= gridEndHour; hour++ {
		for _, minute := range []int{0, 30} {
			if hour == gridEndHour && minute == 30 {
				break
			}
			labels = append(labels, TimeOfDay{Hour: hour, Minute: minute}.Label())
		}
	}
	return labels
}

// Generate lists slots for the given date (default today), optionally
// restricted to one doctor and/or one specialty.
func (g *SlotGenerator) Generate(ctx context.Context, date, doctorID, specialty string) []Slot {
	now := g.now().UTC()
	if date == "" {
		date = now.Format(DateLayout)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		date = now.Format(DateLayout)
	}

	labels := gridLabels()
	if date == now.Format(DateLayout) {
		labels = prunePast(labels, date, now)
		if len(labels) == 0 {
			// Clinic day is over; offer the next day's full grid.
			date = now.AddDate(0, 0, 1).Format(DateLayout)
			labels = gridLabels()
		}
	}

	doctors, err := g.listDoctors(ctx, doctorID, specialty)
	if err != nil {
		g.logger.Error("slots: failed to list doctors", "error", err)
		return g.defaultSlots(date)
	}

	type slotKey struct {
		doctorID string
		time     string
	}
	booked := make(map[slotKey]bool)
	confirmed, err := g.appointments.ListConfirmedByDate(ctx, date)
	if err != nil {
		g.logger.Error("slots: failed to list confirmed appointments", "error", err)
		return g.defaultSlots(date)
	}
	for _, appt := range confirmed {
		if appt.DoctorID != "" && appt.Time != "" {
			booked[slotKey{appt.DoctorID, appt.Time}] = true
		}
	}

	slots := make([]Slot, 0, len(doctors)*len(labels))
	for _, doctor := range doctors {
		for _, label := range labels {
			slots = append(slots, Slot{
				Date:       date,
				Time:       label,
				DoctorID:   doctor.ID,
				DoctorName: doctor.FullName,
				Specialty:  doctor.Specialty,
				Available:  !booked[slotKey{doctor.ID, label}],
			})
		}
	}

	if len(slots) == 0 && g.cfg.DemoDoctorEnabled {
		return g.demoSlots(date, labels)
	}
	return slots
}

// listDoctors applies the id and specialty filters. A specialty filter
// that matches no doctors is dropped rather than returning an empty set.
func (g *SlotGenerator) listDoctors(ctx context.Context, doctorID, specialty string) ([]users.User, error) {
	doctors, err := g.doctors.ListDoctors(ctx, specialty)
	if err != nil {
		return nil, err
	}
	if len(doctors) == 0 && specialty != "" {
		g.logger.Info("slots: no doctors for specialty, falling back to all", "specialty", specialty)
		doctors, err = g.doctors.ListDoctors(ctx, "")
		if err != nil {
			return nil, err
		}
	}
	if doctorID == "" {
		return doctors, nil
	}
	filtered := doctors[:0]
	for _, doctor := range doctors {
		if doctor.ID == doctorID {
			filtered = append(filtered, doctor)
		}
	}
	return filtered, nil
}

func prunePast(labels []string, date string, now time.Time) []string {
	remaining := make([]string, 0, len(labels))
	for _, label := range labels {
		tod, err := ParseClockLabel(label)
		if err != nil {
			continue
		}
		instant, err := tod.Instant(date)
		if err != nil {
			continue
		}
		if instant.After(now) {
			remaining = append(remaining, label)
		}
	}
	return remaining
}

func (g *SlotGenerator) demoSlots(date string, labels []string) []Slot {
	if len(labels) > 10 {
		labels = labels[:10]
	}
	slots := make([]Slot, 0, len(labels))
	for _, label := range labels {
		slots = append(slots, Slot{
			Date:       date,
			Time:       label,
			DoctorID:   "default",
			DoctorName: g.cfg.DemoDoctorName,
			Specialty:  g.cfg.DemoSpecialty,
			Available:  true,
		})
	}
	return slots
}

// defaultSlots is the degraded response when the store is unreachable.
func (g *SlotGenerator) defaultSlots(date string) []Slot {
	labels := []string{"9:00 AM", "9:30 AM", "10:00 AM", "10:30 AM", "11:00 AM"}
	slots := make([]Slot, 0, len(labels))
	for _, label := range labels {
		slots = append(slots, Slot{
			Date:       date,
			Time:       label,
			DoctorID:   "default",
			DoctorName: g.cfg.DemoDoctorName,
			Specialty:  g.cfg.DemoSpecialty,
			Available:  true,
		})
	}
	return slots
}
