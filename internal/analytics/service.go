package analytics

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/users"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// ErrForbidden indicates the actor's role cannot see the requested report.
var ErrForbidden = errors.New("analytics: forbidden")

type appointmentLister interface {
	ListByPatient(ctx context.Context, patientID string) ([]appointments.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]appointments.Appointment, error)
	ListAll(ctx context.Context) ([]appointments.Appointment, error)
}

type questionnaireCounter interface {
	CountByPatient(ctx context.Context, patientID string) (int, error)
	CountAll(ctx context.Context) (int, error)
	HasForAppointment(ctx context.Context, appointmentID string) (bool, error)
}

type userLister interface {
	ListAll(ctx context.Context) ([]users.User, error)
}

type reminderCounter interface {
	CountAll(ctx context.Context) (int, error)
}

// Actor identifies the authenticated caller.
type Actor struct {
	ID   string
	Role users.Role
}

// Service aggregates dashboard and trend reports across the stores.
type Service struct {
	appointments   appointmentLister
	questionnaires questionnaireCounter
	users          userLister
	reminders      reminderCounter
	now            func() time.Time
	logger         *logging.Logger
}

// NewService builds the analytics service.
func NewService(appts appointmentLister, questionnaires questionnaireCounter, userStore userLister, reminders reminderCounter, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		appointments:   appts,
		questionnaires: questionnaires,
		users:          userStore,
		reminders:      reminders,
		now:            func() time.Time { return time.Now().UTC() },
		logger:         logger,
	}
}

// UpcomingAppointment is a patient dashboard row.
type UpcomingAppointment struct {
	ID         string              `json:"id"`
	DoctorName string              `json:"doctor_name"`
	Date       string              `json:"date"`
	Time       string              `json:"time"`
	Status     appointments.Status `json:"status"`
}

// PatientDashboard summarizes a patient's own appointments.
type PatientDashboard struct {
	TotalAppointments     int                   `json:"total_appointments"`
	ConfirmedAppointments int                   `json:"confirmed_appointments"`
	PendingAppointments   int                   `json:"pending_appointments"`
	UpcomingAppointments  []UpcomingAppointment `json:"upcoming_appointments"`
	TotalQuestionnaires   int                   `json:"total_questionnaires"`
}

// ScheduleEntry is a doctor dashboard row for today's appointments.
type ScheduleEntry struct {
	ID          string              `json:"id"`
	PatientName string              `json:"patient_name"`
	Time        string              `json:"time"`
	Status      appointments.Status `json:"status"`
	Type        string              `json:"type"`
}

// DoctorDashboard summarizes a doctor's caseload.
type DoctorDashboard struct {
	TotalAppointments int             `json:"total_appointments"`
	TodayAppointments int             `json:"today_appointments"`
	TotalPatients     int             `json:"total_patients"`
	PendingReviews    int             `json:"pending_reviews"`
	TodaySchedule     []ScheduleEntry `json:"today_schedule"`
}

// AdminDashboard carries global counts across every collection.
type AdminDashboard struct {
	TotalAppointments   int `json:"total_appointments"`
	TotalConfirmed      int `json:"total_confirmed"`
	TotalPending        int `json:"total_pending"`
	TotalCancelled      int `json:"total_cancelled"`
	TotalUsers          int `json:"total_users"`
	TotalPatients       int `json:"total_patients"`
	TotalDoctors        int `json:"total_doctors"`
	TotalReminders      int `json:"total_reminders"`
	TotalQuestionnaires int `json:"total_questionnaires"`
}

// Dashboard dispatches on the actor's role. Unknown roles never reach here;
// the auth boundary rejects them at parse time.
func (s *Service) Dashboard(ctx context.Context, actor Actor) (any, error) {
	switch actor.Role {
	case users.RoleDoctor:
		return s.doctorDashboard(ctx, actor.ID)
	case users.RoleAdmin:
		return s.adminDashboard(ctx)
	default:
		return s.patientDashboard(ctx, actor.ID)
	}
}

func (s *Service) patientDashboard(ctx context.Context, patientID string) (*PatientDashboard, error) {
	appts, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	dash := &PatientDashboard{UpcomingAppointments: []UpcomingAppointment{}}
	today := s.today()
	for _, appt := range appts {
		dash.TotalAppointments++
		switch appt.Status {
		case appointments.StatusConfirmed:
			dash.ConfirmedAppointments++
		case appointments.StatusPending:
			dash.PendingAppointments++
		}

		day, err := time.Parse(appointments.DateLayout, appt.Date)
		if err != nil || day.Before(today) {
			continue
		}
		dash.UpcomingAppointments = append(dash.UpcomingAppointments, UpcomingAppointment{
			ID:         appt.ID,
			DoctorName: appt.DoctorName,
			Date:       appt.Date,
			Time:       appt.Time,
			Status:     appt.Status,
		})
	}

	sort.Slice(dash.UpcomingAppointments, func(i, j int) bool {
		a, b := dash.UpcomingAppointments[i], dash.UpcomingAppointments[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return clockOrder(a.Time) < clockOrder(b.Time)
	})
	if len(dash.UpcomingAppointments) > 5 {
		dash.UpcomingAppointments = dash.UpcomingAppointments[:5]
	}

	count, err := s.questionnaires.CountByPatient(ctx, patientID)
	if err != nil {
		s.logger.Warn("questionnaire count failed", "patient_id", patientID, "error", err)
	} else {
		dash.TotalQuestionnaires = count
	}
	return dash, nil
}

func (s *Service) doctorDashboard(ctx context.Context, doctorID string) (*DoctorDashboard, error) {
	appts, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	dash := &DoctorDashboard{TodaySchedule: []ScheduleEntry{}}
	patients := make(map[string]struct{})
	today := s.now().Format(appointments.DateLayout)
	for _, appt := range appts {
		dash.TotalAppointments++
		if appt.PatientID != "" {
			patients[appt.PatientID] = struct{}{}
		}

		if appt.Date == today {
			dash.TodayAppointments++
			entry := ScheduleEntry{
				ID:          appt.ID,
				PatientName: appt.PatientName,
				Time:        appt.Time,
				Status:      appt.Status,
				Type:        appt.Reason,
			}
			if entry.Type == "" {
				entry.Type = "Consultation"
			}
			dash.TodaySchedule = append(dash.TodaySchedule, entry)
		}

		if appt.Status == appointments.StatusConfirmed {
			has, err := s.questionnaires.HasForAppointment(ctx, appt.ID)
			if err != nil {
				s.logger.Warn("questionnaire lookup failed", "appointment_id", appt.ID, "error", err)
				continue
			}
			if has {
				dash.PendingReviews++
			}
		}
	}
	dash.TotalPatients = len(patients)

	sort.Slice(dash.TodaySchedule, func(i, j int) bool {
		return clockOrder(dash.TodaySchedule[i].Time) < clockOrder(dash.TodaySchedule[j].Time)
	})
	return dash, nil
}

func (s *Service) adminDashboard(ctx context.Context) (*AdminDashboard, error) {
	appts, err := s.appointments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	dash := &AdminDashboard{TotalAppointments: len(appts), TotalUsers: len(accounts)}
	for _, appt := range appts {
		switch appt.Status {
		case appointments.StatusConfirmed:
			dash.TotalConfirmed++
		case appointments.StatusPending:
			dash.TotalPending++
		case appointments.StatusCancelled:
			dash.TotalCancelled++
		}
	}
	for _, account := range accounts {
		switch account.Role {
		case users.RolePatient:
			dash.TotalPatients++
		case users.RoleDoctor:
			dash.TotalDoctors++
		}
	}

	if count, err := s.reminders.CountAll(ctx); err != nil {
		s.logger.Warn("reminder count failed", "error", err)
	} else {
		dash.TotalReminders = count
	}
	if count, err := s.questionnaires.CountAll(ctx); err != nil {
		s.logger.Warn("questionnaire count failed", "error", err)
	} else {
		dash.TotalQuestionnaires = count
	}
	return dash, nil
}

// Stats is the trailing-window appointment report.
type Stats struct {
	PeriodDays        int                         `json:"period_days"`
	TotalAppointments int                         `json:"total_appointments"`
	ByStatus          map[appointments.Status]int `json:"by_status"`
	BySpecialty       map[string]int              `json:"by_specialty"`
}

// WindowStats buckets appointments created in the trailing window by status
// and specialty. Doctors see their own appointments, admins see all.
func (s *Service) WindowStats(ctx context.Context, actor Actor, days int) (*Stats, error) {
	if days <= 0 {
		days = 30
	}

	var (
		appts []appointments.Appointment
		err   error
	)
	switch actor.Role {
	case users.RoleDoctor:
		appts, err = s.appointments.ListByDoctor(ctx, actor.ID)
	case users.RoleAdmin:
		appts, err = s.appointments.ListAll(ctx)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		PeriodDays: days,
		ByStatus: map[appointments.Status]int{
			appointments.StatusConfirmed: 0,
			appointments.StatusPending:   0,
			appointments.StatusCancelled: 0,
			appointments.StatusCompleted: 0,
		},
		BySpecialty: map[string]int{},
	}
	start := s.now().AddDate(0, 0, -days)
	for _, appt := range appts {
		createdAt, err := time.Parse(time.RFC3339Nano, appt.CreatedAt)
		if err != nil || createdAt.Before(start) {
			continue
		}
		stats.TotalAppointments++
		if _, ok := stats.ByStatus[appt.Status]; ok {
			stats.ByStatus[appt.Status]++
		}
		specialty := appt.Specialty
		if specialty == "" {
			specialty = "General"
		}
		stats.BySpecialty[specialty]++
	}
	return stats, nil
}

func (s *Service) today() time.Time {
	return s.now().Truncate(24 * time.Hour)
}

// clockOrder maps a clock label to minutes since midnight so schedules sort
// chronologically rather than lexically.
func clockOrder(label string) int {
	t, err := appointments.ParseClockLabel(label)
	if err != nil {
		return 24 * 60
	}
	return t.Hour*60 + t.Minute
}
