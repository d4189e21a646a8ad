package cart

import (
	"context"
	"sync"

	"github.com/nutricart/nutricart-backend/internal/products"
	"github.com/nutricart/nutricart-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// NutritionTotals are the running macro totals of a cart.
type NutritionTotals struct {
	Calories      float64 `json:"calories"`
	Carbohydrates float64 `json:"carbohydrates"`
	Proteins      float64 `json:"proteins"`
	Fat           float64 `json:"fat"`
}

// NutritionTracker keeps running totals from the nutriments of added and
// removed products.
type NutritionTracker struct {
	mu            sync.Mutex
	calories      decimal.Decimal
	carbohydrates decimal.Decimal
	proteins      decimal.Decimal
	fat           decimal.Decimal
}

func NewNutritionTracker() *NutritionTracker {
	return &NutritionTracker{}
}

func (n *NutritionTracker) HandleCartEvent(_ context.Context, event Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch event.Kind {
	case enums.CartEventProductAdded:
		n.apply(event.Product, decimal.NewFromInt(1))
	case enums.CartEventProductRemoved:
		n.apply(event.Product, decimal.NewFromInt(-1))
	case enums.CartEventCartDeleted:
		n.calories = decimal.Zero
		n.carbohydrates = decimal.Zero
		n.proteins = decimal.Zero
		n.fat = decimal.Zero
	}
	return nil
}

func (n *NutritionTracker) apply(product *products.Product, sign decimal.Decimal) {
	if product == nil {
		return
	}
	n.calories = n.calories.Add(nutrient(product, products.NutrientEnergyKcal).Mul(sign))
	n.carbohydrates = n.carbohydrates.Add(nutrient(product, products.NutrientCarbohydrates).Mul(sign))
	n.proteins = n.proteins.Add(nutrient(product, products.NutrientProteins).Mul(sign))
	n.fat = n.fat.Add(nutrient(product, products.NutrientFat).Mul(sign))
}

// Totals returns the current totals rounded to two decimals.
func (n *NutritionTracker) Totals() NutritionTotals {
	n.mu.Lock()
	defer n.mu.Unlock()
	return NutritionTotals{
		Calories:      n.calories.Round(2).InexactFloat64(),
		Carbohydrates: n.carbohydrates.Round(2).InexactFloat64(),
		Proteins:      n.proteins.Round(2).InexactFloat64(),
		Fat:           n.fat.Round(2).InexactFloat64(),
	}
}

func nutrient(product *products.Product, key string) decimal.Decimal {
	value, ok := product.Nutrient(key)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(value)
}
