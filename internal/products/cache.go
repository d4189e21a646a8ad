package products

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nutricart/nutricart-backend/pkg/enums"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/metrics"
	redisclient "github.com/nutricart/nutricart-backend/pkg/redis"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ProductCacheKey(barcode string) string
}

// CachedLookup serves repeat barcodes from Redis. Only found products are cached.
type CachedLookup struct {
	next    Lookup
	store   cacheStore
	ttl     time.Duration
	metrics *metrics.ProductLookupMetrics
	logg    *logger.Logger
}

// NewCachedLookup wraps next with a Redis cache.
func NewCachedLookup(next Lookup, store cacheStore, ttl time.Duration, m *metrics.ProductLookupMetrics, logg *logger.Logger) *CachedLookup {
	if logg == nil {
		logg = logger.Nop()
	}
	return &CachedLookup{next: next, store: store, ttl: ttl, metrics: m, logg: logg}
}

func (c *CachedLookup) Lookup(ctx context.Context, barcode string) (*Product, bool) {
	key := c.store.ProductCacheKey(barcode)
	logCtx := c.logg.WithField(ctx, "barcode", barcode)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var cached Product
		decodeErr := json.Unmarshal([]byte(raw), &cached)
		if decodeErr == nil {
			c.metrics.IncOutcome(enums.LookupOutcomeCacheHit.String())
			cached.Code = barcode
			return &cached, true
		}
		c.logg.Warn(c.logg.WithField(logCtx, "error", decodeErr.Error()), "product_cache.decode_failed")
	case !errors.Is(err, redisclient.ErrNotFound):
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "product_cache.read_failed")
	}

	product, ok := c.next.Lookup(ctx, barcode)
	if !ok {
		return nil, false
	}

	encoded, err := json.Marshal(product)
	if err != nil {
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "product_cache.encode_failed")
		return product, true
	}
	if err := c.store.Set(ctx, key, string(encoded), c.ttl); err != nil {
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "product_cache.write_failed")
	}
	return product, true
}
