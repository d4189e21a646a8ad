package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nutricart/nutricart-backend/pkg/config"
	pkgerrors "github.com/nutricart/nutricart-backend/pkg/errors"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/metrics"
	"github.com/nutricart/nutricart-backend/pkg/sendgrid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []sendgrid.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg sendgrid.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newDispatcher(t *testing.T, mailer Mailer, cfg config.MailConfig, m *metrics.MailMetrics) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(DispatcherParams{
		Mailer:  mailer,
		Config:  cfg,
		Metrics: m,
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)
	return d
}

func TestNewDispatcherRequiresMailer(t *testing.T) {
	_, err := NewDispatcher(DispatcherParams{Logger: logger.Nop()})
	require.Error(t, err)
}

func TestDispatcherDeliversQueuedMailOnShutdown(t *testing.T) {
	mailer := &recordingMailer{}
	reg := prometheus.NewRegistry()
	m := metrics.NewMailMetrics(reg)
	d := newDispatcher(t, mailer, config.MailConfig{QueueSize: 10, Workers: 2, SendTimeout: time.Second}, m)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Enqueue(ctx, sendgrid.Message{To: "a@x.com", Subject: "hi", HTML: "<p>hi</p>"}))
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	require.NoError(t, d.Shutdown(shutdownCtx))
	require.Equal(t, 5, mailer.count())
}

func TestDispatcherQueueFullIsDependencyError(t *testing.T) {
	d := newDispatcher(t, &recordingMailer{}, config.MailConfig{QueueSize: 1, Workers: 1}, nil)

	require.NoError(t, d.Enqueue(context.Background(), sendgrid.Message{To: "a@x.com"}))
	err := d.Enqueue(context.Background(), sendgrid.Message{To: "b@x.com"})
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	require.ErrorIs(t, err, ErrQueueFull)
}

func TestDispatcherRejectsAfterShutdown(t *testing.T) {
	d := newDispatcher(t, &recordingMailer{}, config.MailConfig{}, nil)
	require.NoError(t, d.Shutdown(context.Background()))
	require.NoError(t, d.Shutdown(context.Background()))

	err := d.Enqueue(context.Background(), sendgrid.Message{To: "a@x.com"})
	require.ErrorIs(t, err, ErrQueueClosed)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestDispatcherCountsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMailMetrics(reg)
	mailer := &recordingMailer{err: errors.New("sendgrid down")}
	d := newDispatcher(t, mailer, config.MailConfig{QueueSize: 4, Workers: 1}, m)

	d.Start(context.Background())
	require.NoError(t, d.Enqueue(context.Background(), sendgrid.Message{To: "a@x.com"}))
	require.NoError(t, d.Enqueue(context.Background(), sendgrid.Message{To: "b@x.com"}))
	require.NoError(t, d.Shutdown(context.Background()))

	require.Equal(t, 0, mailer.count())
	require.Equal(t, float64(2), deliveryCount(t, reg, resultFailed))
}

func TestSendRequestToMessageTrimsRecipient(t *testing.T) {
	msg := SendRequest{To: " a@x.com ", Subject: "s", HTML: "<b>x</b>"}.ToMessage()
	require.Equal(t, "a@x.com", msg.To)
	require.Equal(t, "s", msg.Subject)
}

func deliveryCount(t *testing.T, reg *prometheus.Registry, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "email_deliveries_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "result" && label.GetValue() == result {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
