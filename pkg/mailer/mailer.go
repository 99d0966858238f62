package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Message is a plain-text outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers outbound email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them. Used in
// development and tests.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer returns a Mailer that only logs.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message and reports success.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email suppressed (log mailer)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
