package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nutricart/nutricart-backend/internal/cart"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/metrics"
)

// Publisher sends an encoded message to a topic.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) error
}

// Listener records every cart event in the log and metrics, and forwards it to
// Pub/Sub when a publisher is configured. One Listener is shared by all carts.
type Listener struct {
	logg           *logger.Logger
	metrics        *metrics.CartMetrics
	publisher      Publisher
	publishTimeout time.Duration
}

const defaultPublishTimeout = 2 * time.Second

// NewListener builds the shared analytics listener. publisher may be nil.
func NewListener(logg *logger.Logger, m *metrics.CartMetrics, publisher Publisher) (*Listener, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Listener{
		logg:           logg,
		metrics:        m,
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
	}, nil
}

// WithPublishTimeout bounds how long a cart mutation waits on Pub/Sub.
func (l *Listener) WithPublishTimeout(timeout time.Duration) *Listener {
	if timeout > 0 {
		l.publishTimeout = timeout
	}
	return l
}

var _ cart.Listener = (*Listener)(nil)

func (l *Listener) HandleCartEvent(ctx context.Context, event cart.Event) error {
	l.metrics.IncEvent(event.Kind.String())

	fields := map[string]any{
		"event":   event.Kind.String(),
		"user_id": event.UserID.String(),
	}
	if event.Code != "" {
		fields["code"] = event.Code
	}
	if event.Message != "" {
		fields["message"] = event.Message
	}
	logCtx := l.logg.WithFields(ctx, fields)
	l.logg.Info(logCtx, "analytics.cart_event")

	if l.publisher == nil {
		return nil
	}
	envelope, err := newEnvelope(event)
	if err != nil {
		return fmt.Errorf("build analytics envelope: %w", err)
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode analytics envelope: %w", err)
	}
	attrs := map[string]string{
		"event_id":   envelope.EventID,
		"event_type": envelope.EventType.String(),
	}
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.publishTimeout)
	defer cancel()
	if err := l.publisher.Publish(publishCtx, data, attrs); err != nil {
		return fmt.Errorf("publish cart event: %w", err)
	}
	return nil
}
