package savedcarts

import (
	"time"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/pkg/db/models"
	"github.com/nutricart/nutricart-backend/pkg/types"
)

// SavedCartDTO is the transport shape of a persisted cart snapshot.
type SavedCartDTO struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	UserID    uuid.UUID          `json:"user_id"`
	CartData  types.CartSnapshot `json:"cart_data"`
	CreatedAt time.Time          `json:"created_at"`
}

// CreateSavedCartDTO holds the data required to persist a snapshot.
type CreateSavedCartDTO struct {
	Name     string
	UserID   uuid.UUID
	CartData types.CartSnapshot
}

func FromModel(c *models.SavedCart) *SavedCartDTO {
	if c == nil {
		return nil
	}
	return &SavedCartDTO{
		ID:        c.ID,
		Name:      c.Name,
		UserID:    c.UserID,
		CartData:  c.CartData,
		CreatedAt: c.CreatedAt,
	}
}

func (c CreateSavedCartDTO) ToModel() *models.SavedCart {
	return &models.SavedCart{
		Name:     c.Name,
		UserID:   c.UserID,
		CartData: c.CartData,
	}
}
