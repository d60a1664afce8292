package reminders

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidChannel indicates a delivery channel outside the closed set.
var ErrInvalidChannel = errors.New("reminders: unknown channel")

// Channel is the delivery mechanism for a reminder. Only email is
// actually delivered today; sms records are kept for the log surface.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ParseChannel validates a channel string. Empty defaults to sms to
// match the request surface; unknown values are rejected.
func ParseChannel(raw string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return ChannelSMS, nil
	case ChannelEmail:
		return ChannelEmail, nil
	case ChannelSMS:
		return ChannelSMS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidChannel, raw)
	}
}

// Status is the reminder delivery state. sent is terminal.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusSent      Status = "sent"
)

// Reminder is the persisted reminder record. FireAt and SentAt are
// RFC 3339 UTC instants stored as strings.
type Reminder struct {
	ID              string  `dynamodbav:"id" json:"id"`
	AppointmentID   string  `dynamodbav:"appointmentId" json:"appointment_id"`
	PatientID       string  `dynamodbav:"patientId" json:"patient_id"`
	DoctorID        string  `dynamodbav:"doctorId" json:"doctor_id"`
	Channel         Channel `dynamodbav:"channel" json:"reminder_type"`
	LeadHours       int     `dynamodbav:"leadHours" json:"hours_before"`
	Status          Status  `dynamodbav:"status" json:"status"`
	FireAt          string  `dynamodbav:"fireAt" json:"scheduled_at"`
	SentAt          string  `dynamodbav:"sentAt,omitempty" json:"sent_at,omitempty"`
	AppointmentDate string  `dynamodbav:"appointmentDate" json:"appointment_date"`
	AppointmentTime string  `dynamodbav:"appointmentTime" json:"appointment_time"`
	Specialty       string  `dynamodbav:"specialty,omitempty" json:"specialty,omitempty"`
	Reason          string  `dynamodbav:"reason,omitempty" json:"reason,omitempty"`
	Immediate       bool    `dynamodbav:"immediate,omitempty" json:"immediate,omitempty"`
	CreatedBy       string  `dynamodbav:"createdBy" json:"created_by"`
	CreatedAt       string  `dynamodbav:"createdAt" json:"created_at"`
}

// FireTime parses the stored fire instant.
func (r *Reminder) FireTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, r.FireAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("reminders: invalid fireAt %q: %w", r.FireAt, err)
	}
	return t, nil
}
