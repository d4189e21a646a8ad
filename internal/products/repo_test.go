package products

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nutricart/nutricart-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))
	return conn
}

type failingRepo struct{ calls int }

func (f *failingRepo) Upsert(context.Context, *models.Product) error {
	f.calls++
	return errors.New("db down")
}

func TestRepositoryUpsert(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, soda().ToModel()))

	renamed := "Diet Soda"
	updated := &Product{Code: "123", Name: &renamed, Nutriments: map[string]any{"energy-kcal": 1.0, "fat": "0.25"}}
	require.NoError(t, repo.Upsert(ctx, updated.ToModel()))

	row, err := repo.FindByBarcode(ctx, "123")
	require.NoError(t, err)
	require.NotNil(t, row.Name)
	assert.Equal(t, "Diet Soda", *row.Name)
	require.True(t, row.EnergyKcal.Valid)
	assert.Equal(t, "1", row.EnergyKcal.Decimal.String())
	require.True(t, row.Fat.Valid)
	assert.Equal(t, "0.25", row.Fat.Decimal.String())
	assert.False(t, row.Proteins.Valid)

	_, err = repo.FindByBarcode(ctx, "nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCatalogLookupRecordsFoundProducts(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	upstream := &countingLookup{products: map[string]*Product{"123": soda()}}
	lookup := NewCatalogLookup(upstream, repo, nil)

	product, ok := lookup.Lookup(context.Background(), "123")
	require.True(t, ok)
	assert.Equal(t, "123", product.Code)

	row, err := repo.FindByBarcode(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "42", row.EnergyKcal.Decimal.String())

	_, ok = lookup.Lookup(context.Background(), "missing")
	assert.False(t, ok)
	_, err = repo.FindByBarcode(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCatalogLookupIgnoresWriteFailures(t *testing.T) {
	repo := &failingRepo{}
	lookup := NewCatalogLookup(&countingLookup{products: map[string]*Product{"123": soda()}}, repo, nil)

	product, ok := lookup.Lookup(context.Background(), "123")
	require.True(t, ok)
	assert.Equal(t, "123", product.Code)
	assert.Equal(t, 1, repo.calls)
}

func TestProductNutrient(t *testing.T) {
	p := Product{Nutriments: map[string]any{"a": 1.5, "b": "2.5", "c": "x", "d": true}}
	v, ok := p.Nutrient("a")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
	v, ok = p.Nutrient("b")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)
	_, ok = p.Nutrient("c")
	assert.False(t, ok)
	_, ok = p.Nutrient("d")
	assert.False(t, ok)
	_, ok = Product{}.Nutrient("a")
	assert.False(t, ok)
}
