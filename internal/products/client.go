package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nutricart/nutricart-backend/pkg/config"
	"github.com/nutricart/nutricart-backend/pkg/enums"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/metrics"
	"github.com/sony/gobreaker/v2"
)

const (
	productPath   = "/api/v2/product/"
	productFields = "code,product_name,nutriments"
	maxBodyBytes  = 1 << 20
	breakerName   = "openfoodfacts"
)

// errUpstreamRejected marks 4xx responses. They resolve to absent but do not
// count against the breaker.
var errUpstreamRejected = errors.New("upstream rejected request")

// Client queries the OpenFoodFacts product API.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	breaker   *gobreaker.CircuitBreaker[*Product]
	metrics   *metrics.ProductLookupMetrics
	logg      *logger.Logger
}

type upstreamResponse struct {
	Status  any              `json:"status"`
	Product *upstreamProduct `json:"product"`
}

type upstreamProduct struct {
	Code        string         `json:"code"`
	ProductName *string        `json:"product_name"`
	Nutriments  map[string]any `json:"nutriments"`
}

// NewClient builds the upstream lookup client guarded by a circuit breaker.
func NewClient(cfg config.ProductLookupConfig, m *metrics.ProductLookupMetrics, logg *logger.Logger) *Client {
	if logg == nil {
		logg = logger.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	c := &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		metrics:   m,
		logg:      logg,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Product](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, errUpstreamRejected) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "product_lookup.breaker_state_changed")
		},
	})
	return c
}

// Lookup fetches the barcode upstream. Every failure is logged and reported as absent.
func (c *Client) Lookup(ctx context.Context, barcode string) (*Product, bool) {
	start := time.Now()
	product, err := c.breaker.Execute(func() (*Product, error) {
		return c.fetch(ctx, barcode)
	})
	c.metrics.ObserveDuration(time.Since(start))

	logCtx := c.logg.WithField(ctx, "barcode", barcode)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.IncOutcome(enums.LookupOutcomeBreakerOpen.String())
		c.logg.Warn(logCtx, "product_lookup.breaker_open")
		return nil, false
	case errors.Is(err, errUpstreamRejected):
		c.metrics.IncOutcome(enums.LookupOutcomeNotFound.String())
		c.logg.Debug(c.logg.WithField(logCtx, "reason", err.Error()), "product_lookup.rejected")
		return nil, false
	case err != nil:
		c.metrics.IncOutcome(enums.LookupOutcomeError.String())
		c.logg.Error(logCtx, "product_lookup.failed", err)
		return nil, false
	case product == nil:
		c.metrics.IncOutcome(enums.LookupOutcomeNotFound.String())
		return nil, false
	}
	c.metrics.IncOutcome(enums.LookupOutcomeFound.String())
	return product, true
}

func (c *Client) productURL(barcode string) string {
	return c.baseURL + productPath + url.PathEscape(barcode) + "?fields=" + productFields
}

func (c *Client) fetch(ctx context.Context, barcode string) (*Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.productURL(barcode), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request product: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: status %d", errUpstreamRejected, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("unexpected upstream status %d", resp.StatusCode)
	}

	var payload upstreamResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	if payload.Product == nil || isZeroStatus(payload.Status) {
		return nil, nil
	}

	nutriments := payload.Product.Nutriments
	if nutriments == nil {
		nutriments = map[string]any{}
	}
	return &Product{
		Code:       barcode,
		Name:       payload.Product.ProductName,
		Nutriments: nutriments,
	}, nil
}

func isZeroStatus(status any) bool {
	switch v := status.(type) {
	case float64:
		return v == 0
	case string:
		return v == "0" || strings.EqualFold(v, "failure")
	default:
		return false
	}
}
