package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/internal/products"
	"github.com/nutricart/nutricart-backend/pkg/enums"
	"github.com/nutricart/nutricart-backend/pkg/logger"
)

const clearedMessage = "Cart has been cleared"

// Event is a cart lifecycle notification. product_added and product_removed
// carry Code and Product; cart_deleted carries Message.
type Event struct {
	Kind       enums.CartEvent   `json:"event"`
	UserID     uuid.UUID         `json:"user_id"`
	Code       string            `json:"code,omitempty"`
	Product    *products.Product `json:"-"`
	Message    string            `json:"message,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Listener reacts to cart events. Implementations must be comparable so they
// can be detached.
type Listener interface {
	HandleCartEvent(ctx context.Context, event Event) error
}

func productEvent(kind enums.CartEvent, userID uuid.UUID, product products.Product, at time.Time) Event {
	return Event{
		Kind:       kind,
		UserID:     userID,
		Code:       product.Code,
		Product:    &product,
		OccurredAt: at,
	}
}

func deletedEvent(userID uuid.UUID, at time.Time) Event {
	return Event{
		Kind:       enums.CartEventCartDeleted,
		UserID:     userID,
		Message:    clearedMessage,
		OccurredAt: at,
	}
}

// notify runs every listener in order. A failing or panicking listener is
// logged and the rest still run.
func notify(ctx context.Context, logg *logger.Logger, listeners []Listener, event Event) {
	for _, listener := range listeners {
		dispatch(ctx, logg, listener, event)
	}
}

func dispatch(ctx context.Context, logg *logger.Logger, listener Listener, event Event) {
	logCtx := logg.WithFields(ctx, map[string]any{
		"event":    event.Kind.String(),
		"listener": fmt.Sprintf("%T", listener),
	})
	defer func() {
		if r := recover(); r != nil {
			logg.Error(logCtx, "cart.listener_panic", fmt.Errorf("panic: %v", r))
		}
	}()
	if err := listener.HandleCartEvent(ctx, event); err != nil {
		logg.Error(logCtx, "cart.listener_failed", err)
	}
}
