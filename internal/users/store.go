package users

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

// ErrNotFound indicates the requested user does not exist.
var ErrNotFound = errors.New("users: not found")

// ErrEmailTaken indicates a registration collided with an existing account.
var ErrEmailTaken = errors.New("users: email already registered")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists user records to DynamoDB keyed by id.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("users: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("users: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{client: client, tableName: tableName, logger: logger}
}

// Create inserts a new user after checking the email is unused. The
// email check and the insert are not atomic; the id condition only
// guards against uuid reuse.
func (s *Store) Create(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("users: user cannot be nil")
	}
	user.Email = NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return errors.New("users: password hash required")
	}

	existing, err := s.GetByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt == "" {
		user.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("users: failed to marshal user: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("users: failed to persist user: %w", err)
	}
	return nil
}

// GetByID fetches a user by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, errors.New("users: id required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("users: failed to fetch user: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var user User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, fmt.Errorf("users: failed to decode user: %w", err)
	}
	return &user, nil
}

// GetByEmail scans for a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("users: email required")
	}
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("users: failed to scan by email: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}
	var user User
	if err := attributevalue.UnmarshalMap(out.Items[0], &user); err != nil {
		return nil, fmt.Errorf("users: failed to decode user: %w", err)
	}
	return &user, nil
}

// ListDoctors returns all doctor accounts, optionally filtered by specialty.
func (s *Store) ListDoctors(ctx context.Context, specialty string) ([]User, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("#role = :role"),
		ExpressionAttributeNames: map[string]string{
			"#role": "role",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":role": &types.AttributeValueMemberS{Value: string(RoleDoctor)},
		},
	}
	if specialty != "" {
		input.FilterExpression = aws.String("#role = :role AND specialty = :specialty")
		input.ExpressionAttributeValues[":specialty"] = &types.AttributeValueMemberS{Value: specialty}
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("users: failed to list doctors: %w", err)
	}
	doctors := make([]User, 0, len(out.Items))
	for _, item := range out.Items {
		var user User
		if err := attributevalue.UnmarshalMap(item, &user); err != nil {
			return nil, fmt.Errorf("users: failed to decode doctor: %w", err)
		}
		doctors = append(doctors, user)
	}
	return doctors, nil
}

// ListAll returns every account. Admin surfaces only.
func (s *Store) ListAll(ctx context.Context) ([]User, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("users: failed to list users: %w", err)
	}
	all := make([]User, 0, len(out.Items))
	for _, item := range out.Items {
		var user User
		if err := attributevalue.UnmarshalMap(item, &user); err != nil {
			return nil, fmt.Errorf("users: failed to decode user: %w", err)
		}
		all = append(all, user)
	}
	return all, nil
}
