package middleware

import (
	"errors"
	"net/http"

	"github.com/nutricart/nutricart-backend/api/responses"
	"github.com/nutricart/nutricart-backend/api/validators"
	pkgAuth "github.com/nutricart/nutricart-backend/pkg/auth"
	"github.com/nutricart/nutricart-backend/pkg/auth/session"
	"github.com/nutricart/nutricart-backend/pkg/config"
	pkgerrors "github.com/nutricart/nutricart-backend/pkg/errors"
	"github.com/nutricart/nutricart-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := validators.BearerToken(r.Header.Get("Authorization"))

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, tokenErrorMessage(err)))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithAccessID(ctx, claims.ID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, pkgAuth.ErrTokenMissing):
		return pkgAuth.ErrTokenMissing.Error()
	case errors.Is(err, pkgAuth.ErrTokenExpired):
		return pkgAuth.ErrTokenExpired.Error()
	default:
		return pkgAuth.ErrTokenInvalid.Error()
	}
}
