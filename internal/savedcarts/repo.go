package savedcarts

import (
	"context"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists saved cart snapshots.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a saved carts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the snapshot and returns the stored row.
func (r *Repository) Create(ctx context.Context, dto CreateSavedCartDTO) (*models.SavedCart, error) {
	row := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListByUser returns the user's saved carts, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedCart, error) {
	var rows []models.SavedCart
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
