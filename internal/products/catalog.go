package products

import (
	"context"

	"github.com/nutricart/nutricart-backend/pkg/db/models"
	"github.com/nutricart/nutricart-backend/pkg/logger"
)

type catalogRepository interface {
	Upsert(ctx context.Context, product *models.Product) error
}

// CatalogLookup records every found product in the catalog table. Write
// failures are logged and never change the lookup result.
type CatalogLookup struct {
	next Lookup
	repo catalogRepository
	logg *logger.Logger
}

func NewCatalogLookup(next Lookup, repo catalogRepository, logg *logger.Logger) *CatalogLookup {
	if logg == nil {
		logg = logger.Nop()
	}
	return &CatalogLookup{next: next, repo: repo, logg: logg}
}

func (c *CatalogLookup) Lookup(ctx context.Context, barcode string) (*Product, bool) {
	product, ok := c.next.Lookup(ctx, barcode)
	if !ok {
		return nil, false
	}
	if err := c.repo.Upsert(ctx, product.ToModel()); err != nil {
		c.logg.Error(c.logg.WithField(ctx, "barcode", barcode), "product_catalog.upsert_failed", err)
	}
	return product, true
}
