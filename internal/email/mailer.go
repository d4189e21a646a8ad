package email

import (
	"context"

	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/sendgrid"
)

// LogMailer records messages in the log instead of sending them. It backs
// local environments without SendGrid credentials.
type LogMailer struct {
	logg *logger.Logger
}

func NewLogMailer(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, msg sendgrid.Message) error {
	m.logg.Info(m.logg.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
		"bytes":   len(msg.HTML),
	}), "email.logged")
	return nil
}
