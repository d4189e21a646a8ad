package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/pkg/types"
	"gorm.io/gorm"
)

// SavedCart is a named snapshot of a cart that was finalized by its owner.
type SavedCart struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Name      string             `gorm:"column:name;not null;default:'My Cart'"`
	UserID    uuid.UUID          `gorm:"type:uuid;column:user_id;not null;index:idx_saved_carts_user_created"`
	CartData  types.CartSnapshot `gorm:"column:cart_data;type:jsonb;serializer:json;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime;index:idx_saved_carts_user_created"`
}

func (c *SavedCart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
