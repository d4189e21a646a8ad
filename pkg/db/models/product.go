package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry recorded the first time a barcode resolves upstream.
// Macro nutrients are per 100g.
type Product struct {
	Barcode       string              `gorm:"column:barcode;primaryKey"`
	Name          *string             `gorm:"column:name"`
	Carbohydrates decimal.NullDecimal `gorm:"column:carbohydrates;type:numeric(10,2)"`
	Proteins      decimal.NullDecimal `gorm:"column:proteins;type:numeric(10,2)"`
	Fat           decimal.NullDecimal `gorm:"column:fat;type:numeric(10,2)"`
	EnergyKcal    decimal.NullDecimal `gorm:"column:energy_kcal;type:numeric(10,2)"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
