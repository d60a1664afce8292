package reminders

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

// ErrAlreadySent indicates a MarkSent attempt on a record that is no
// longer scheduled. Dispatch treats it as a no-op.
var ErrAlreadySent = errors.New("reminders: already sent")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists reminders to DynamoDB keyed by id.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("reminders: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("reminders: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{client: client, tableName: tableName, logger: logger}
}

// Create inserts a new reminder record.
func (s *Store) Create(ctx context.Context, reminder *Reminder) error {
	if reminder == nil {
		return errors.New("reminders: reminder cannot be nil")
	}
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	if reminder.CreatedAt == "" {
		reminder.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	item, err := attributevalue.MarshalMap(reminder)
	if err != nil {
		return fmt.Errorf("reminders: failed to marshal reminder: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("reminders: failed to persist reminder: %w", err)
	}
	return nil
}

// ListScheduled fetches up to limit reminders with status scheduled.
// The store cannot combine the equality filter with a time range, so
// due-time comparison happens in process after fetch.
func (s *Store) ListScheduled(ctx context.Context, limit int32) ([]Reminder, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(StatusScheduled)},
		},
		Limit: aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("reminders: failed to list scheduled reminders: %w", err)
	}
	return decodeReminders(out.Items)
}

// MarkSent transitions a reminder to sent, but only if it is still
// scheduled. A lost race returns ErrAlreadySent instead of re-sending.
func (s *Store) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	if id == "" {
		return errors.New("reminders: id required")
	}
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("SET #status = :sent, sentAt = :sentAt"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sent":      &types.AttributeValueMemberS{Value: string(StatusSent)},
			":sentAt":    &types.AttributeValueMemberS{Value: sentAt.UTC().Format(time.RFC3339Nano)},
			":scheduled": &types.AttributeValueMemberS{Value: string(StatusScheduled)},
		},
		ConditionExpression: aws.String("#status = :scheduled"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadySent
		}
		return fmt.Errorf("reminders: failed to mark reminder %s sent: %w", id, err)
	}
	return nil
}

// ListByAppointment returns all reminders for one appointment.
func (s *Store) ListByAppointment(ctx context.Context, appointmentID string) ([]Reminder, error) {
	return s.scan(ctx, aws.String("appointmentId = :id"), map[string]types.AttributeValue{
		":id": &types.AttributeValueMemberS{Value: appointmentID},
	})
}

// ListByPatient returns all reminders for a patient's appointments.
func (s *Store) ListByPatient(ctx context.Context, patientID string) ([]Reminder, error) {
	return s.scan(ctx, aws.String("patientId = :id"), map[string]types.AttributeValue{
		":id": &types.AttributeValueMemberS{Value: patientID},
	})
}

// ListByDoctor returns all reminders for a doctor's appointments.
func (s *Store) ListByDoctor(ctx context.Context, doctorID string) ([]Reminder, error) {
	return s.scan(ctx, aws.String("doctorId = :id"), map[string]types.AttributeValue{
		":id": &types.AttributeValueMemberS{Value: doctorID},
	})
}

// ListAll returns every reminder. Admin surfaces only.
func (s *Store) ListAll(ctx context.Context) ([]Reminder, error) {
	return s.scan(ctx, nil, nil)
}

func (s *Store) scan(ctx context.Context, filter *string, values map[string]types.AttributeValue) ([]Reminder, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          filter,
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(50),
	})
	if err != nil {
		return nil, fmt.Errorf("reminders: failed to scan reminders: %w", err)
	}
	return decodeReminders(out.Items)
}

func decodeReminders(items []map[string]types.AttributeValue) ([]Reminder, error) {
	reminders := make([]Reminder, 0, len(items))
	for _, item := range items {
		var reminder Reminder
		if err := attributevalue.UnmarshalMap(item, &reminder); err != nil {
			return nil, fmt.Errorf("reminders: failed to decode reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	return reminders, nil
}

// CountAll returns the total number of reminder records.
func (s *Store) CountAll(ctx context.Context) (int, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
		Select:    types.SelectCount,
	})
	if err != nil {
		return 0, fmt.Errorf("reminders: failed to count reminders: %w", err)
	}
	return int(out.Count), nil
}
