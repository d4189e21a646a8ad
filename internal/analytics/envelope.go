package analytics

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/internal/cart"
	"github.com/nutricart/nutricart-backend/internal/products"
	"github.com/nutricart/nutricart-backend/pkg/enums"
)

const aggregateTypeCart = "cart"

// Envelope is the Pub/Sub message published for every cart event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     enums.CartEvent `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// CartEventPayload is the event body carried inside the envelope.
type CartEventPayload struct {
	Code        string   `json:"code,omitempty"`
	ProductName *string  `json:"product_name,omitempty"`
	Calories    *float64 `json:"calories,omitempty"`
	Message     string   `json:"message,omitempty"`
}

func newEnvelope(event cart.Event) (Envelope, error) {
	payload := CartEventPayload{
		Code:    event.Code,
		Message: event.Message,
	}
	if event.Product != nil {
		payload.ProductName = event.Product.Name
		if kcal, ok := event.Product.Nutrient(products.NutrientEnergyKcal); ok {
			payload.Calories = &kcal
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     event.Kind,
		AggregateType: aggregateTypeCart,
		AggregateID:   event.UserID.String(),
		OccurredAt:    occurredAt.UTC(),
		Payload:       body,
	}, nil
}
