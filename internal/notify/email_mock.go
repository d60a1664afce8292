package notify

import (
	"context"

	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// MockSender logs emails instead of sending them. Used in development and
// whenever no real provider is configured.
type MockSender struct {
	logger *logging.Logger
}

// NewMockSender creates a log-only email sender.
func NewMockSender(logger *logging.Logger) *MockSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &MockSender{logger: logger.Component("mock-email")}
}

// Send logs the email and reports success.
func (s *MockSender) Send(_ context.Context, msg EmailMessage) error {
	preview := msg.HTML
	if preview == "" {
		preview = msg.Body
	}
	if len(preview) > 200 {
		preview = preview[:200]
	}
	s.logger.Info("mock email",
		"to", msg.To,
		"subject", msg.Subject,
		"body_preview", preview,
	)
	return nil
}

var _ EmailSender = (*MockSender)(nil)
