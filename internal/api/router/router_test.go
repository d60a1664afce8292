package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurorahealth/medscheduler/internal/agents"
	"github.com/aurorahealth/medscheduler/internal/analytics"
	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/auth"
	"github.com/aurorahealth/medscheduler/internal/content"
	"github.com/aurorahealth/medscheduler/internal/notify"
	"github.com/aurorahealth/medscheduler/internal/questionnaires"
	"github.com/aurorahealth/medscheduler/internal/reminders"
	"github.com/aurorahealth/medscheduler/internal/users"
)

type stubDynamo struct{}

func (stubDynamo) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (stubDynamo) GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{}, nil
}

func (stubDynamo) UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return &dynamodb.UpdateItemOutput{}, nil
}

func (stubDynamo) Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenIssuer) {
	t.Helper()

	db := stubDynamo{}
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	dispatcher := agents.NewMockDispatcher(nil)
	generator := content.NewGenerator(nil, content.GeneratorConfig{}, nil, nil)
	sender := notify.NewMockSender(nil)

	userStore := users.NewStore(db, "users", nil)
	apptStore := appointments.NewStore(db, "appointments", nil)
	reminderStore := reminders.NewStore(db, "reminders", nil)
	questionnaireStore := questionnaires.NewStore(db, "questionnaires", nil)

	slots := appointments.NewSlotGenerator(userStore, apptStore, appointments.SlotGeneratorConfig{}, nil)
	apptService := appointments.NewService(apptStore, userStore, dispatcher, generator, sender, nil)
	scheduler := reminders.NewScheduler(reminderStore, apptStore, userStore, dispatcher, generator, sender, nil)
	questionnaireService := questionnaires.NewService(questionnaireStore, apptStore, dispatcher, generator, nil)
	analyticsService := analytics.NewService(apptStore, questionnaireStore, userStore, reminderStore, nil)

	handler := New(&Config{
		TokenIssuer:          issuer,
		AuthHandler:          auth.NewHandler(userStore, issuer, nil),
		AppointmentsHandler:  appointments.NewHandler(apptService, slots, nil),
		RemindersHandler:     reminders.NewHandler(scheduler, nil),
		QuestionnaireHandler: questionnaires.NewHandler(questionnaireService, nil),
		AnalyticsHandler:     analytics.NewHandler(analyticsService, nil),
	})
	return handler, issuer
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	handler, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/appointments",
		"/api/slots",
		"/api/reminder/logs",
		"/api/analytics/dashboard",
		"/auth/me",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestProtectedRouteAcceptsValidToken(t *testing.T) {
	handler, issuer := newTestRouter(t)

	token, err := issuer.Issue("pat-1", users.RolePatient)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSlotsAvailableToAuthenticatedUsers(t *testing.T) {
	handler, issuer := newTestRouter(t)

	token, err := issuer.Issue("pat-1", users.RolePatient)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/slots?date=2025-03-10", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	handler, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Empty body fails validation before any store lookup.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
