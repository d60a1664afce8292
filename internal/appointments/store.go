package appointments

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

// ErrNotFound indicates the requested appointment does not exist.
var ErrNotFound = errors.New("appointments: not found")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists appointments to DynamoDB keyed by id.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("appointments: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("appointments: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{client: client, tableName: tableName, logger: logger}
}

// Create inserts a new appointment, generating the id and timestamps.
func (s *Store) Create(ctx context.Context, appt *Appointment) error {
	if appt == nil {
		return errors.New("appointments: appointment cannot be nil")
	}
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if appt.CreatedAt == "" {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now

	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		return fmt.Errorf("appointments: failed to marshal appointment: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("appointments: failed to persist appointment: %w", err)
	}
	return nil
}

// Get fetches an appointment by id.
func (s *Store) Get(ctx context.Context, id string) (*Appointment, error) {
	if id == "" {
		return nil, errors.New("appointments: id required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to fetch appointment: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var appt Appointment
	if err := attributevalue.UnmarshalMap(out.Item, &appt); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode appointment: %w", err)
	}
	return &appt, nil
}

// UpdateSchedule moves an existing appointment to a new date and time.
func (s *Store) UpdateSchedule(ctx context.Context, id, newDate, newTime string) error {
	return s.update(ctx, id,
		"SET #date = :date, #time = :time, #updated = :updated",
		map[string]string{
			"#date":    "date",
			"#time":    "time",
			"#updated": "updatedAt",
		},
		map[string]types.AttributeValue{
			":date":    &types.AttributeValueMemberS{Value: newDate},
			":time":    &types.AttributeValueMemberS{Value: newTime},
			":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	)
}

// UpdateStatus transitions an appointment's lifecycle state.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	return s.update(ctx, id,
		"SET #status = :status, #updated = :updated",
		map[string]string{
			"#status":  "status",
			"#updated": "updatedAt",
		},
		map[string]types.AttributeValue{
			":status":  &types.AttributeValueMemberS{Value: string(status)},
			":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	)
}

func (s *Store) update(ctx context.Context, id, expression string, names map[string]string, values map[string]types.AttributeValue) error {
	if id == "" {
		return errors.New("appointments: id required")
	}
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String(expression),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("appointments: failed to update appointment %s: %w", id, err)
	}
	return nil
}

// ListByPatient returns every appointment for a patient.
func (s *Store) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	return s.scan(ctx, aws.String("patientId = :id"), map[string]types.AttributeValue{
		":id": &types.AttributeValueMemberS{Value: patientID},
	}, nil)
}

// ListByDoctor returns every appointment for a doctor.
func (s *Store) ListByDoctor(ctx context.Context, doctorID string) ([]Appointment, error) {
	return s.scan(ctx, aws.String("doctorId = :id"), map[string]types.AttributeValue{
		":id": &types.AttributeValueMemberS{Value: doctorID},
	}, nil)
}

// ListAll returns every appointment. Admin surfaces only.
func (s *Store) ListAll(ctx context.Context) ([]Appointment, error) {
	return s.scan(ctx, nil, nil, nil)
}

// ListConfirmedByDate returns confirmed appointments on a calendar day.
// The slot generator joins against this in a single pass.
func (s *Store) ListConfirmedByDate(ctx context.Context, date string) ([]Appointment, error) {
	return s.scan(ctx,
		aws.String("#date = :date AND #status = :status"),
		map[string]types.AttributeValue{
			":date":   &types.AttributeValueMemberS{Value: date},
			":status": &types.AttributeValueMemberS{Value: string(StatusConfirmed)},
		},
		map[string]string{
			"#date":   "date",
			"#status": "status",
		},
	)
}

func (s *Store) scan(ctx context.Context, filter *string, values map[string]types.AttributeValue, names map[string]string) ([]Appointment, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          filter,
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  names,
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to scan appointments: %w", err)
	}
	appts := make([]Appointment, 0, len(out.Items))
	for _, item := range out.Items {
		var appt Appointment
		if err := attributevalue.UnmarshalMap(item, &appt); err != nil {
			return nil, fmt.Errorf("appointments: failed to decode appointment: %w", err)
		}
		appts = append(appts, appt)
	}
	return appts, nil
}
