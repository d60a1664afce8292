package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurorahealth/medscheduler/internal/agents"
	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/content"
	"github.com/aurorahealth/medscheduler/internal/notify"
	"github.com/aurorahealth/medscheduler/internal/users"
)

type fakeAppointments struct {
	appt *appointments.Appointment
}

func (f *fakeAppointments) Get(context.Context, string) (*appointments.Appointment, error) {
	if f.appt == nil {
		return nil, appointments.ErrNotFound
	}
	return f.appt, nil
}

type fakeUsers struct {
	byID map[string]*users.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*users.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

type capturingSender struct {
	sent []notify.EmailMessage
	err  error
}

func (c *capturingSender) Send(_ context.Context, msg notify.EmailMessage) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func janesAppointment() *appointments.Appointment {
	return &appointments.Appointment{
		ID:          "apt-1",
		PatientID:   "pat-1",
		DoctorID:    "doc-1",
		PatientName: "Jane Doe",
		DoctorName:  "Dr. Smith",
		Date:        "2025-03-10",
		Time:        "10:00 AM",
		Status:      appointments.StatusConfirmed,
		Specialty:   "Cardiologist",
	}
}

func newTestScheduler(mock *mockDynamo, sender notify.EmailSender) *Scheduler {
	store := NewStore(mock, "reminders", nil)
	appts := &fakeAppointments{appt: janesAppointment()}
	userStore := &fakeUsers{byID: map[string]*users.User{
		"pat-1": {ID: "pat-1", Email: "jane@example.com", FullName: "Jane Doe"},
		"doc-1": {ID: "doc-1", FullName: "Dr. Smith", Specialty: "Cardiologist"},
	}}
	gen := content.NewGenerator(nil, content.GeneratorConfig{}, nil, nil)
	s := NewScheduler(store, appts, userStore, agents.NewMockDispatcher(nil), gen, sender, nil)
	// Scheduling happens well before the appointment.
	s.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestFireAtExactness(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		date  string
		label string
		lead  int
		want  time.Time
	}{
		{"2025-03-10", "10:00 AM", 24, time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)},
		{"2025-03-10", "2:30 PM", 2, time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)},
		{"2025-03-10", "12:00 AM", 1, time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)},
		{"2025-03-10", "12:00 PM", 48, time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got := FireAt(tc.date, tc.label, tc.lead, now)
		assert.Equal(t, tc.want, got, "%s %s -%dh", tc.date, tc.label, tc.lead)
	}
}

func TestFireAtParseFailureFallsBackToNow(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now, FireAt("2025-03-10", "whenever", 24, now))
	assert.Equal(t, now, FireAt("bad-date", "10:00 AM", 24, now))
}

func TestScheduleCreatesScheduledReminder(t *testing.T) {
	mock := &mockDynamo{}
	s := newTestScheduler(mock, &capturingSender{})

	reminder, err := s.Schedule(context.Background(), Actor{ID: "pat-1", Role: users.RolePatient}, ScheduleRequest{
		AppointmentID: "apt-1",
		Channel:       "email",
		LeadHours:     24,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusScheduled, reminder.Status)
	assert.Equal(t, "2025-03-09T10:00:00Z", reminder.FireAt)
	assert.Equal(t, ChannelEmail, reminder.Channel)
	assert.Equal(t, 24, reminder.LeadHours)
	assert.Equal(t, "pat-1", reminder.CreatedBy)

	require.Len(t, mock.putInputs, 1)
	var stored Reminder
	require.NoError(t, attributevalue.UnmarshalMap(mock.putInputs[0].Item, &stored))
	assert.Equal(t, StatusScheduled, stored.Status)
	assert.Equal(t, "2025-03-09T10:00:00Z", stored.FireAt)
}

func TestScheduleDeliversWhenFireTimePassed(t *testing.T) {
	mock := &mockDynamo{}
	sender := &capturingSender{}
	s := newTestScheduler(mock, sender)
	// The appointment is less than 24h away, so the reminder is due now.
	s.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

	reminder, err := s.Schedule(context.Background(), Actor{ID: "pat-1", Role: users.RolePatient}, ScheduleRequest{
		AppointmentID: "apt-1",
		Channel:       "email",
		LeadHours:     24,
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jane@example.com", sender.sent[0].To)
	assert.Equal(t, StatusSent, reminder.Status)
	require.Len(t, mock.updateInputs, 1)
}

func TestScheduleDefaultsChannelAndLead(t *testing.T) {
	mock := &mockDynamo{}
	s := newTestScheduler(mock, &capturingSender{})

	reminder, err := s.Schedule(context.Background(), Actor{ID: "doc-1", Role: users.RoleDoctor}, ScheduleRequest{
		AppointmentID: "apt-1",
	})
	require.NoError(t, err)
	assert.Equal(t, ChannelSMS, reminder.Channel)
	assert.Equal(t, 24, reminder.LeadHours)
}

func TestScheduleRejectsUnknownChannel(t *testing.T) {
	s := newTestScheduler(&mockDynamo{}, &capturingSender{})

	_, err := s.Schedule(context.Background(), Actor{ID: "pat-1", Role: users.RolePatient}, ScheduleRequest{
		AppointmentID: "apt-1",
		Channel:       "carrier-pigeon",
	})
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func TestSchedulePatientCannotTargetOthersAppointment(t *testing.T) {
	mock := &mockDynamo{}
	s := newTestScheduler(mock, &capturingSender{})

	_, err := s.Schedule(context.Background(), Actor{ID: "pat-9", Role: users.RolePatient}, ScheduleRequest{
		AppointmentID: "apt-1",
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, mock.putInputs)
}

func TestSendImmediateWritesSentRecord(t *testing.T) {
	mock := &mockDynamo{}
	sender := &capturingSender{}
	s := newTestScheduler(mock, sender)

	reminder, err := s.SendImmediate(context.Background(), Actor{ID: "doc-1", Role: users.RoleDoctor}, "apt-1", "email")
	require.NoError(t, err)

	assert.Equal(t, StatusSent, reminder.Status)
	assert.NotEmpty(t, reminder.SentAt)
	assert.True(t, reminder.Immediate)
	require.Len(t, sender.sent, 1)

	require.Len(t, mock.putInputs, 1)
	var stored Reminder
	require.NoError(t, attributevalue.UnmarshalMap(mock.putInputs[0].Item, &stored))
	assert.Equal(t, StatusSent, stored.Status)
}
