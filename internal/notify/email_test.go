package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSenderBuildsMessage(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSender(fake, SESConfig{FromEmail: "noreply@clinic.test", FromName: "Clinic"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "jane@example.com",
		Subject: "Appointment Confirmed",
		Body:    "plain",
		HTML:    "<p>rich</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, fake.input)

	assert.Equal(t, "Clinic <noreply@clinic.test>", aws.ToString(fake.input.FromEmailAddress))
	assert.Equal(t, []string{"jane@example.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "Appointment Confirmed", aws.ToString(fake.input.Content.Simple.Subject.Data))
	assert.Equal(t, "plain", aws.ToString(fake.input.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>rich</p>", aws.ToString(fake.input.Content.Simple.Body.Html.Data))
}

func TestSESSenderPropagatesError(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	sender := NewSESSender(fake, SESConfig{FromEmail: "noreply@clinic.test"}, nil)

	err := sender.Send(context.Background(), EmailMessage{To: "jane@example.com", Subject: "x", Body: "y"})
	assert.Error(t, err)
}

func TestNewSESSenderNilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}

func TestMockSenderNeverFails(t *testing.T) {
	sender := NewMockSender(nil)
	err := sender.Send(context.Background(), EmailMessage{To: "jane@example.com", Subject: "hi", HTML: "<p>body</p>"})
	assert.NoError(t, err)
}

func TestSendGridMessageBodies(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.key", FromEmail: "noreply@clinic.test"}, nil)

	bodyFor := func(msg EmailMessage, contentType string) string {
		t.Helper()
		for _, c := range sender.buildMessage(msg).Content {
			if c.Type == contentType {
				return c.Value
			}
		}
		t.Fatalf("no %s part in message", contentType)
		return ""
	}

	msg := EmailMessage{To: "jane@example.com", Subject: "hi", Body: "plain", HTML: "<p>rich</p>"}
	assert.Equal(t, "plain", bodyFor(msg, "text/plain"))
	assert.Equal(t, "<p>rich</p>", bodyFor(msg, "text/html"))

	// Text-only messages fall back to the plain body for the HTML part.
	textOnly := EmailMessage{To: "jane@example.com", Subject: "hi", Body: "plain only"}
	assert.Equal(t, "plain only", bodyFor(textOnly, "text/html"))
}

func TestNewSendGridSenderRequiresKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, nil))
	assert.NotNil(t, NewSendGridSender(SendGridConfig{APIKey: "SG.key", FromEmail: "noreply@clinic.test"}, nil))
}
