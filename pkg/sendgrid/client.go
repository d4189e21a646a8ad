package sendgrid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nutricart/nutricart-backend/pkg/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a single HTML email to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Client delivers email through the SendGrid v3 API.
type Client struct {
	sender   sender
	from     string
	fromName string
}

var (
	ErrAPIKeyRequired = errors.New("sendgrid api key is required")
	ErrFromRequired   = errors.New("sendgrid from address is required")
)

// New builds a SendGrid client from configuration.
func New(cfg config.SendgridConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, ErrFromRequired
	}
	return &Client{
		sender:   sendgrid.NewSendClient(cfg.APIKey),
		from:     cfg.DefaultFrom,
		fromName: cfg.FromName,
	}, nil
}

// Send delivers msg, treating any 4xx/5xx response as a failure.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil || c.sender == nil {
		return errors.New("sendgrid client not initialized")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("to address is empty")
	}

	email := mail.NewV3MailInit(
		mail.NewEmail(c.fromName, c.from),
		msg.Subject,
		mail.NewEmail("", msg.To),
		mail.NewContent("text/html", msg.HTML),
	)

	response, err := c.sender.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response == nil {
		return errors.New("sendgrid returned no response")
	}
	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}
	return nil
}
