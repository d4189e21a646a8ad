package products

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nutricart/nutricart-backend/pkg/config"
	"github.com/nutricart/nutricart-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*config.ProductLookupConfig)) (*Client, *prometheus.Registry) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.ProductLookupConfig{
		BaseURL:          srv.URL + "/",
		Timeout:          time.Second,
		UserAgent:        "NutriCart/test",
		BreakerFailures:  3,
		BreakerOpenDelay: time.Minute,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	reg := prometheus.NewRegistry()
	return NewClient(cfg, metrics.NewProductLookupMetrics(reg), nil), reg
}

func TestLookupFound(t *testing.T) {
	var gotPath, gotFields, gotUA string
	client, reg := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFields = r.URL.Query().Get("fields")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":1,"product":{"code":"0000000000123","product_name":"Soda","nutriments":{"energy-kcal":42,"sugars":10.6}}}`))
	}, nil)

	product, ok := client.Lookup(context.Background(), "123")
	require.True(t, ok)
	require.NotNil(t, product)
	assert.Equal(t, "123", product.Code, "queried barcode is preserved")
	require.NotNil(t, product.Name)
	assert.Equal(t, "Soda", *product.Name)
	assert.Equal(t, float64(42), product.Nutriments["energy-kcal"])
	assert.Equal(t, "/api/v2/product/123", gotPath)
	assert.Equal(t, "code,product_name,nutriments", gotFields)
	assert.Equal(t, "NutriCart/test", gotUA)
	assert.Equal(t, float64(1), outcomeCount(t, reg, "found"))
}

func TestLookupNullNameAndMissingNutriments(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1,"product":{"code":"9"}}`))
	}, nil)

	product, ok := client.Lookup(context.Background(), "9")
	require.True(t, ok)
	assert.Nil(t, product.Name)
	assert.NotNil(t, product.Nutriments)
	assert.Empty(t, product.Nutriments)
}

func TestLookupAbsentResponses(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status zero": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":0,"status_verbose":"product not found","product":{}}`))
		},
		"missing product": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":1}`))
		},
		"not found status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":0}`))
		},
		"bad request": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		},
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, handler, nil)
			product, ok := client.Lookup(context.Background(), "123")
			assert.False(t, ok)
			assert.Nil(t, product)
		})
	}
}

func TestLookupEscapesBarcode(t *testing.T) {
	var escaped string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		escaped = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"status":1,"product":{}}`))
	}, nil)

	product, ok := client.Lookup(context.Background(), "a/b c")
	require.True(t, ok)
	assert.Equal(t, "a/b c", product.Code)
	assert.Equal(t, "/api/v2/product/a%2Fb%20c", escaped)
}

func TestLookupTimeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status":1,"product":{}}`))
	}, func(cfg *config.ProductLookupConfig) {
		cfg.Timeout = 20 * time.Millisecond
	})

	_, ok := client.Lookup(context.Background(), "123")
	assert.False(t, ok)
}

func TestLookupBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	client, reg := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, func(cfg *config.ProductLookupConfig) {
		cfg.BreakerFailures = 2
	})

	for i := 0; i < 4; i++ {
		_, ok := client.Lookup(context.Background(), "123")
		assert.False(t, ok)
	}
	assert.Equal(t, int32(2), hits.Load(), "open breaker short-circuits upstream")
	assert.Equal(t, float64(2), outcomeCount(t, reg, "error"))
	assert.Equal(t, float64(2), outcomeCount(t, reg, "breaker_open"))
}

func TestLookupRejectionsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, func(cfg *config.ProductLookupConfig) {
		cfg.BreakerFailures = 1
	})

	for i := 0; i < 3; i++ {
		_, _ = client.Lookup(context.Background(), "missing")
	}
	assert.Equal(t, int32(3), hits.Load())
}

func outcomeCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "product_lookup_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
