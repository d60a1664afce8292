package questionnaires

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurorahealth/medscheduler/internal/agents"
	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/content"
	"github.com/aurorahealth/medscheduler/internal/users"
)

type mockDynamo struct {
	putInputs    []*dynamodb.PutItemInput
	updateInputs []*dynamodb.UpdateItemInput
	scanOut      *dynamodb.ScanOutput
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInputs = append(m.putInputs, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, in)
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *mockDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.scanOut != nil {
		return m.scanOut, nil
	}
	return &dynamodb.ScanOutput{}, nil
}

type fakeAppointments struct {
	appt *appointments.Appointment
}

func (f *fakeAppointments) Get(context.Context, string) (*appointments.Appointment, error) {
	if f.appt == nil {
		return nil, appointments.ErrNotFound
	}
	return f.appt, nil
}

func newTestService(mock *mockDynamo) *Service {
	store := NewStore(mock, "questionnaires", nil)
	appts := &fakeAppointments{appt: &appointments.Appointment{
		ID:        "apt-1",
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Status:    appointments.StatusConfirmed,
	}}
	gen := content.NewGenerator(nil, content.GeneratorConfig{}, nil, nil)
	return NewService(store, appts, agents.NewMockDispatcher(nil), gen, nil)
}

func TestSubmitUpsertsWithSummary(t *testing.T) {
	mock := &mockDynamo{}
	svc := newTestService(mock)

	q, err := svc.Submit(context.Background(), Actor{ID: "pat-1", Role: users.RolePatient}, SubmitRequest{
		AppointmentID:  "apt-1",
		ChiefComplaint: "headache",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "Chief Complaint: headache", q.Summary)
	assert.NotEmpty(t, q.SubmittedAt)
	require.Len(t, mock.putInputs, 1)
}

func TestSubmitReusesExistingRecordID(t *testing.T) {
	existing, err := attributevalue.MarshalMap(&Questionnaire{
		ID:            "q-1",
		AppointmentID: "apt-1",
		PatientID:     "pat-1",
	})
	require.NoError(t, err)

	mock := &mockDynamo{scanOut: &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{existing}}}
	svc := newTestService(mock)

	q, err := svc.Submit(context.Background(), Actor{ID: "pat-1", Role: users.RolePatient}, SubmitRequest{
		AppointmentID: "apt-1",
		Symptoms:      "dizziness",
	})
	require.NoError(t, err)
	assert.Equal(t, "q-1", q.ID)
}

func TestSubmitOnlyPatientOwner(t *testing.T) {
	mock := &mockDynamo{}
	svc := newTestService(mock)

	_, err := svc.Submit(context.Background(), Actor{ID: "pat-2", Role: users.RolePatient}, SubmitRequest{AppointmentID: "apt-1"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Submit(context.Background(), Actor{ID: "doc-1", Role: users.RoleDoctor}, SubmitRequest{AppointmentID: "apt-1"})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, mock.putInputs)
}

func TestGetPermissions(t *testing.T) {
	stored, err := attributevalue.MarshalMap(&Questionnaire{
		ID:            "q-1",
		AppointmentID: "apt-1",
		PatientID:     "pat-1",
		Summary:       "Chief Complaint: headache",
	})
	require.NoError(t, err)

	mock := &mockDynamo{scanOut: &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{stored}}}
	svc := newTestService(mock)

	q, err := svc.Get(context.Background(), Actor{ID: "doc-9", Role: users.RoleDoctor}, "apt-1")
	require.NoError(t, err)
	assert.Equal(t, "q-1", q.ID)

	_, err = svc.Get(context.Background(), Actor{ID: "pat-2", Role: users.RolePatient}, "apt-1")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSummaryGeneratesAndPersistsWhenAbsent(t *testing.T) {
	stored, err := attributevalue.MarshalMap(&Questionnaire{
		ID:             "q-1",
		AppointmentID:  "apt-1",
		PatientID:      "pat-1",
		ChiefComplaint: "headache",
	})
	require.NoError(t, err)

	mock := &mockDynamo{scanOut: &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{stored}}}
	svc := newTestService(mock)

	result, err := svc.Summary(context.Background(), Actor{ID: "pat-1", Role: users.RolePatient}, "apt-1")
	require.NoError(t, err)
	assert.Equal(t, "Chief Complaint: headache", result.Summary)
	require.Len(t, mock.updateInputs, 1)
	assert.Contains(t, *mock.updateInputs[0].UpdateExpression, "summary")
}

func TestSummaryUsesStoredValue(t *testing.T) {
	stored, err := attributevalue.MarshalMap(&Questionnaire{
		ID:            "q-1",
		AppointmentID: "apt-1",
		PatientID:     "pat-1",
		Summary:       "already summarized",
	})
	require.NoError(t, err)

	mock := &mockDynamo{scanOut: &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{stored}}}
	svc := newTestService(mock)

	result, err := svc.Summary(context.Background(), Actor{ID: "pat-1", Role: users.RolePatient}, "apt-1")
	require.NoError(t, err)
	assert.Equal(t, "already summarized", result.Summary)
	assert.Empty(t, mock.updateInputs)
}

func TestGetMissingQuestionnaire(t *testing.T) {
	svc := newTestService(&mockDynamo{})
	_, err := svc.Get(context.Background(), Actor{ID: "pat-1", Role: users.RolePatient}, "apt-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
