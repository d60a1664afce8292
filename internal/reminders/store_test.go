package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type mockDynamo struct {
	putInputs    []*dynamodb.PutItemInput
	updateInputs []*dynamodb.UpdateItemInput
	scanOut      *dynamodb.ScanOutput
	scanErr      error
	updateErr    error
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInputs = append(m.putInputs, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, in)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *mockDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	if m.scanOut != nil {
		return m.scanOut, nil
	}
	return &dynamodb.ScanOutput{}, nil
}

func TestStore_CreatePersistsDefaults(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "reminders", nil)

	r := &Reminder{
		AppointmentID: "apt-1",
		PatientID:     "pat-1",
		Channel:       ChannelEmail,
		Status:        StatusScheduled,
		FireAt:        time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := store.Create(context.Background(), r); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if r.ID == "" {
		t.Fatal("expected id to be generated")
	}
	if len(mock.putInputs) != 1 {
		t.Fatalf("expected 1 put, got %d", len(mock.putInputs))
	}

	var stored Reminder
	if err := attributevalue.UnmarshalMap(mock.putInputs[0].Item, &stored); err != nil {
		t.Fatalf("failed to unmarshal stored reminder: %v", err)
	}
	if stored.Status != StatusScheduled {
		t.Fatalf("expected status scheduled, got %s", stored.Status)
	}
	if stored.CreatedAt == "" {
		t.Fatal("expected createdAt to be populated")
	}
}

func TestStore_MarkSentIsConditional(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "reminders", nil)

	if err := store.MarkSent(context.Background(), "rem-1", time.Now()); err != nil {
		t.Fatalf("MarkSent returned error: %v", err)
	}
	if len(mock.updateInputs) != 1 {
		t.Fatalf("expected 1 update, got %d", len(mock.updateInputs))
	}
	update := mock.updateInputs[0]
	if update.ConditionExpression == nil || *update.ConditionExpression != "#status = :scheduled" {
		t.Fatalf("expected condition on scheduled status, got %v", update.ConditionExpression)
	}
}

func TestStore_MarkSentLostRace(t *testing.T) {
	mock := &mockDynamo{updateErr: &types.ConditionalCheckFailedException{}}
	store := NewStore(mock, "reminders", nil)

	err := store.MarkSent(context.Background(), "rem-1", time.Now())
	if !errors.Is(err, ErrAlreadySent) {
		t.Fatalf("expected ErrAlreadySent, got %v", err)
	}
}

func TestStore_ListScheduledDecodes(t *testing.T) {
	item, err := attributevalue.MarshalMap(&Reminder{
		ID:            "rem-1",
		AppointmentID: "apt-1",
		Status:        StatusScheduled,
		FireAt:        "2025-03-09T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("marshal reminder: %v", err)
	}
	mock := &mockDynamo{scanOut: &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{item}}}
	store := NewStore(mock, "reminders", nil)

	got, err := store.ListScheduled(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListScheduled returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "rem-1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
