package products

import (
	"context"

	"github.com/nutricart/nutricart-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists catalog entries keyed by barcode.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts the product or refreshes its name and nutrients.
func (r *Repository) Upsert(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "barcode"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "carbohydrates", "proteins", "fat", "energy_kcal", "updated_at"}),
		}).
		Create(product).Error
}

// FindByBarcode returns the catalog entry or gorm.ErrRecordNotFound.
func (r *Repository) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
