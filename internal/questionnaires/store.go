package questionnaires

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// ErrNotFound indicates no questionnaire exists for the appointment.
var ErrNotFound = errors.New("questionnaires: not found")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists questionnaires to DynamoDB keyed by id, with lookups
// by appointment id.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("questionnaires: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("questionnaires: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{client: client, tableName: tableName, logger: logger}
}

// GetByAppointment fetches the questionnaire for an appointment.
func (s *Store) GetByAppointment(ctx context.Context, appointmentID string) (*Questionnaire, error) {
	if appointmentID == "" {
		return nil, errors.New("questionnaires: appointment id required")
	}
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("appointmentId = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: appointmentID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("questionnaires: failed to scan by appointment: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}
	var q Questionnaire
	if err := attributevalue.UnmarshalMap(out.Items[0], &q); err != nil {
		return nil, fmt.Errorf("questionnaires: failed to decode questionnaire: %w", err)
	}
	return &q, nil
}

// Upsert writes the questionnaire, reusing the id of any existing
// record for the same appointment so each appointment keeps at most
// one active questionnaire.
func (s *Store) Upsert(ctx context.Context, q *Questionnaire) error {
	if q == nil {
		return errors.New("questionnaires: questionnaire cannot be nil")
	}
	existing, err := s.GetByAppointment(ctx, q.AppointmentID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		q.ID = existing.ID
	} else if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.SubmittedAt == "" {
		q.SubmittedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	item, err := attributevalue.MarshalMap(q)
	if err != nil {
		return fmt.Errorf("questionnaires: failed to marshal questionnaire: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("questionnaires: failed to persist questionnaire: %w", err)
	}
	return nil
}

// SetSummary persists a generated summary onto an existing record.
func (s *Store) SetSummary(ctx context.Context, id, summary string) error {
	if id == "" {
		return errors.New("questionnaires: id required")
	}
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("SET summary = :summary"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":summary": &types.AttributeValueMemberS{Value: summary},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("questionnaires: failed to update summary for %s: %w", id, err)
	}
	return nil
}

// CountAll returns the total number of questionnaire records.
func (s *Store) CountAll(ctx context.Context) (int, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
		Select:    types.SelectCount,
	})
	if err != nil {
		return 0, fmt.Errorf("questionnaires: failed to count questionnaires: %w", err)
	}
	return int(out.Count), nil
}

// CountByPatient returns how many questionnaires a patient has submitted.
func (s *Store) CountByPatient(ctx context.Context, patientID string) (int, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("patientId = :patient"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":patient": &types.AttributeValueMemberS{Value: patientID},
		},
		Select: types.SelectCount,
	})
	if err != nil {
		return 0, fmt.Errorf("questionnaires: failed to count questionnaires for patient %s: %w", patientID, err)
	}
	return int(out.Count), nil
}

// HasForAppointment reports whether a questionnaire exists for an appointment.
func (s *Store) HasForAppointment(ctx context.Context, appointmentID string) (bool, error) {
	_, err := s.GetByAppointment(ctx, appointmentID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
