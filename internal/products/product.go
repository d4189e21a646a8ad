package products

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nutricart/nutricart-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Product is a normalized upstream product record. It is never mutated once built.
type Product struct {
	Code       string         `json:"code"`
	Name       *string        `json:"name"`
	Nutriments map[string]any `json:"nutriments"`
}

// Lookup resolves a barcode into a Product. A false result means the product
// is absent, whatever the cause.
type Lookup interface {
	Lookup(ctx context.Context, barcode string) (*Product, bool)
}

// LookupFunc adapts a plain function into a Lookup.
type LookupFunc func(ctx context.Context, barcode string) (*Product, bool)

func (f LookupFunc) Lookup(ctx context.Context, barcode string) (*Product, bool) {
	return f(ctx, barcode)
}

const (
	NutrientEnergyKcal    = "energy-kcal"
	NutrientCarbohydrates = "carbohydrates"
	NutrientProteins      = "proteins"
	NutrientFat           = "fat"
)

// Nutrient reads a numeric nutriment value. Upstream sends numbers, but older
// records carry them as strings.
func (p Product) Nutrient(key string) (float64, bool) {
	if p.Nutriments == nil {
		return 0, false
	}
	switch v := p.Nutriments[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// ToModel maps the product onto a catalog row.
func (p Product) ToModel() *models.Product {
	return &models.Product{
		Barcode:       p.Code,
		Name:          p.Name,
		Carbohydrates: p.nutrientDecimal(NutrientCarbohydrates),
		Proteins:      p.nutrientDecimal(NutrientProteins),
		Fat:           p.nutrientDecimal(NutrientFat),
		EnergyKcal:    p.nutrientDecimal(NutrientEnergyKcal),
	}
}

func (p Product) nutrientDecimal(key string) decimal.NullDecimal {
	value, ok := p.Nutrient(key)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(value).Round(2))
}

func (p Product) String() string {
	name := "<unnamed>"
	if p.Name != nil {
		name = *p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Code, name)
}
