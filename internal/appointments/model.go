package appointments

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime indicates a time label that is not on the 12-hour grid
// format. Surfaced as a client error at the HTTP boundary.
var ErrInvalidTime = errors.New("appointments: invalid time label")

// DateLayout is the calendar-day format used across the API.
const DateLayout = "2006-01-02"

// Status is the appointment lifecycle state. Records are never deleted;
// cancellation is a status transition.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a status string at the boundary.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("appointments: unknown status %q", raw)
	}
}

// Appointment is the persisted booking record. Date is a calendar day
// and Time is a half-hour 12-hour clock label; both come from the slot
// grid, so display strings round-trip unchanged.
type Appointment struct {
	ID          string `dynamodbav:"id" json:"id"`
	PatientID   string `dynamodbav:"patientId" json:"patient_id"`
	DoctorID    string `dynamodbav:"doctorId" json:"doctor_id"`
	PatientName string `dynamodbav:"patientName" json:"patient_name"`
	DoctorName  string `dynamodbav:"doctorName" json:"doctor_name"`
	Date        string `dynamodbav:"date" json:"date"`
	Time        string `dynamodbav:"time" json:"time"`
	Status      Status `dynamodbav:"status" json:"status"`
	Reason      string `dynamodbav:"reason,omitempty" json:"reason,omitempty"`
	Specialty   string `dynamodbav:"specialty,omitempty" json:"specialty,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt" json:"created_at"`
	UpdatedAt   string `dynamodbav:"updatedAt" json:"updated_at"`
}

// TimeOfDay is the structured form of a 12-hour slot label. Labels are
// parsed once at the boundary; the label survives only for display.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseClockLabel parses labels like "9:00 AM", "12:30 PM". 12 AM maps
// to hour 0 and 12 PM to hour 12.
func ParseClockLabel(label string) (TimeOfDay, error) {
	parts := strings.Fields(strings.TrimSpace(label))
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, label)
	}
	meridiem := strings.ToUpper(parts[1])
	if meridiem != "AM" && meridiem != "PM" {
		return TimeOfDay{}, fmt.Errorf("%w: bad meridiem in %q", ErrInvalidTime, label)
	}

	clock := strings.SplitN(parts[0], ":", 2)
	if len(clock) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, label)
	}
	hour, err := strconv.Atoi(clock[0])
	if err != nil || hour < 1 || hour > 12 {
		return TimeOfDay{}, fmt.Errorf("%w: bad hour in %q", ErrInvalidTime, label)
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: bad minute in %q", ErrInvalidTime, label)
	}

	if meridiem == "PM" && hour != 12 {
		hour += 12
	} else if meridiem == "AM" && hour == 12 {
		hour = 0
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Label renders the display form of the time of day.
func (t TimeOfDay) Label() string {
	meridiem := "AM"
	hour := t.Hour
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		meridiem = "PM"
	case hour > 12:
		hour -= 12
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, meridiem)
}

// Instant combines a calendar day with the time of day into a UTC
// instant. No per-user time zone is modeled.
func (t TimeOfDay) Instant(date string) (time.Time, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointments: invalid date %q: %w", date, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, time.UTC), nil
}

// Instant parses an appointment's date and time label into a UTC instant.
func (a *Appointment) Instant() (time.Time, error) {
	tod, err := ParseClockLabel(a.Time)
	if err != nil {
		return time.Time{}, err
	}
	return tod.Instant(a.Date)
}
