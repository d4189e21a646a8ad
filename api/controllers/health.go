package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/nutricart/nutricart-backend/api/responses"
	"github.com/nutricart/nutricart-backend/pkg/config"
	"github.com/nutricart/nutricart-backend/pkg/db"
	pkgerrors "github.com/nutricart/nutricart-backend/pkg/errors"
	"github.com/nutricart/nutricart-backend/pkg/logger"
)

const (
	envHeader    = "X-NutriCart-Env"
	readyTimeout = 2 * time.Second
)

// ReadyCheck names a dependency probed by the readiness endpoint.
type ReadyCheck struct {
	Name   string
	Pinger db.Pinger
}

// Root answers the bare service probe.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and fails with 503 on the first error.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				appErr := pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.Name+" unavailable").
					WithDetails(map[string]string{"dependency": check.Name})
				responses.WriteError(r.Context(), logg, w, appErr)
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
