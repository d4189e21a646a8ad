package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/nutricart/nutricart-backend/api/controllers"
	"github.com/nutricart/nutricart-backend/api/routes"
	"github.com/nutricart/nutricart-backend/internal/analytics"
	"github.com/nutricart/nutricart-backend/internal/auth"
	"github.com/nutricart/nutricart-backend/internal/cart"
	"github.com/nutricart/nutricart-backend/internal/email"
	"github.com/nutricart/nutricart-backend/internal/products"
	"github.com/nutricart/nutricart-backend/internal/savedcarts"
	"github.com/nutricart/nutricart-backend/internal/users"
	"github.com/nutricart/nutricart-backend/pkg/auth/session"
	"github.com/nutricart/nutricart-backend/pkg/config"
	"github.com/nutricart/nutricart-backend/pkg/db"
	"github.com/nutricart/nutricart-backend/pkg/env"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/metrics"
	"github.com/nutricart/nutricart-backend/pkg/migrate"
	"github.com/nutricart/nutricart-backend/pkg/pubsub"
	"github.com/nutricart/nutricart-backend/pkg/redis"
	"github.com/nutricart/nutricart-backend/pkg/security"
	"github.com/nutricart/nutricart-backend/pkg/sendgrid"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, db.Options{UseSQLite: cfg.FeatureFlags.UseSQLite}, logg)
	if err != nil {
		return err
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	closers = append(closers, redisClient.Close)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	lookupMetrics := metrics.NewProductLookupMetrics(registry)
	cartMetrics := metrics.NewCartMetrics(registry)
	mailMetrics := metrics.NewMailMetrics(registry)

	readyChecks := []controllers.ReadyCheck{
		{Name: "database", Pinger: dbClient},
		{Name: "redis", Pinger: redisClient},
	}

	var publisher analytics.Publisher
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		topic := psClient.CartEventsPublisher()
		closers = append(closers, psClient.Close, func() error {
			topic.Stop()
			return nil
		})
		publisher = topic
		readyChecks = append(readyChecks, controllers.ReadyCheck{Name: "pubsub", Pinger: psClient})
	}

	analyticsListener, err := analytics.NewListener(logg, cartMetrics, publisher)
	if err != nil {
		return err
	}
	analyticsListener.WithPublishTimeout(cfg.PubSub.PublishTimeout)

	var lookup products.Lookup = products.NewClient(cfg.ProductLookup, lookupMetrics, logg)
	lookup = products.NewCatalogLookup(lookup, products.NewRepository(dbClient.DB()), logg)
	lookup = products.NewCachedLookup(lookup, redisClient, cfg.ProductLookup.CacheTTL, lookupMetrics, logg)

	carts := cart.NewRegistry(func(userID uuid.UUID) *cart.Cart {
		c := cart.NewCart(userID, lookup, logg)
		c.Attach(analyticsListener)
		return c
	})

	cartService, err := cart.NewService(cart.ServiceParams{
		Registry:         carts,
		SavedCarts:       savedcarts.NewRepository(dbClient.DB()),
		DefaultSavedName: cfg.Cart.DefaultSavedName,
		Logger:           logg,
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		Hasher:         security.NewHasher(cfg.Password),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return err
	}

	dispatcher, err := email.NewDispatcher(email.DispatcherParams{
		Mailer:  newMailer(cfg.Sendgrid, logg),
		Config:  cfg.Mail,
		Metrics: mailMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}
	dispatcher.Start(ctx)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			ReadyChecks:     readyChecks,
			Sessions:        sessionManager,
			RateLimiter:     redisClient,
			AuthService:     authService,
			CartService:     cartService,
			EmailQueue:      dispatcher,
			MetricsGatherer: registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return multierr.Combine(
		server.Shutdown(shutdownCtx),
		dispatcher.Shutdown(shutdownCtx),
	)
}

func newMailer(cfg config.SendgridConfig, logg *logger.Logger) email.Mailer {
	client, err := sendgrid.New(cfg)
	if err != nil {
		logg.Warn(logg.WithField(context.Background(), "reason", err.Error()), "sendgrid disabled, email will be logged only")
		return email.NewLogMailer(logg)
	}
	return client
}
