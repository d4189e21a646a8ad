package sendgrid

import (
	"context"
	"errors"
	"testing"

	"github.com/nutricart/nutricart-backend/pkg/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (s *stubSender) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	s.sent = append(s.sent, email)
	return s.response, s.err
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(config.SendgridConfig{DefaultFrom: "noreply@nutricart.app"})
	require.ErrorIs(t, err, ErrAPIKeyRequired)

	_, err = New(config.SendgridConfig{APIKey: "key"})
	require.ErrorIs(t, err, ErrFromRequired)

	client, err := New(config.SendgridConfig{APIKey: "key", DefaultFrom: "noreply@nutricart.app", FromName: "NutriCart"})
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestSendBuildsMessage(t *testing.T) {
	stub := &stubSender{response: &rest.Response{StatusCode: 202}}
	client := &Client{sender: stub, from: "noreply@nutricart.app", fromName: "NutriCart"}

	err := client.Send(context.Background(), Message{To: "a@x.com", Subject: "Welcome", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	require.Len(t, stub.sent, 1)

	email := stub.sent[0]
	assert.Equal(t, "Welcome", email.Subject)
	assert.Equal(t, "noreply@nutricart.app", email.From.Address)
	assert.Equal(t, "NutriCart", email.From.Name)
	require.Len(t, email.Personalizations, 1)
	require.Len(t, email.Personalizations[0].To, 1)
	assert.Equal(t, "a@x.com", email.Personalizations[0].To[0].Address)
	require.Len(t, email.Content, 1)
	assert.Equal(t, "text/html", email.Content[0].Type)
	assert.Equal(t, "<p>hi</p>", email.Content[0].Value)
}

func TestSendFailures(t *testing.T) {
	client := &Client{sender: &stubSender{response: &rest.Response{StatusCode: 401, Body: "unauthorized"}}, from: "f@x.com"}
	err := client.Send(context.Background(), Message{To: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")

	client = &Client{sender: &stubSender{err: errors.New("dial tcp")}, from: "f@x.com"}
	require.Error(t, client.Send(context.Background(), Message{To: "a@x.com"}))

	client = &Client{sender: &stubSender{}, from: "f@x.com"}
	require.Error(t, client.Send(context.Background(), Message{To: " "}))
}
