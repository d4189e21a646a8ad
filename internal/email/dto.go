package email

import (
	"strings"

	"github.com/nutricart/nutricart-backend/pkg/sendgrid"
)

// SendRequest is the body accepted by the email endpoint.
type SendRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	HTML    string `json:"html" validate:"required"`
}

func (r SendRequest) ToMessage() sendgrid.Message {
	return sendgrid.Message{
		To:      strings.TrimSpace(r.To),
		Subject: r.Subject,
		HTML:    r.HTML,
	}
}
