package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/api/middleware"
	"github.com/nutricart/nutricart-backend/api/responses"
	"github.com/nutricart/nutricart-backend/api/validators"
	"github.com/nutricart/nutricart-backend/internal/auth"
	pkgerrors "github.com/nutricart/nutricart-backend/pkg/errors"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/types"
)

// AuthRegister creates an account and returns the new user.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// AuthLogin accepts OAuth2 password form fields or a JSON body.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		body, err := decodeLogin(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthMe returns the authenticated user.
func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context"))
			return
		}

		user, err := svc.Me(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

// AuthLogout revokes the session backing the current token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if err := svc.Logout(r.Context(), middleware.AccessIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.MessageResponse{Message: "Logged out"})
	}
}

func decodeLogin(r *http.Request) (auth.LoginRequest, error) {
	var body auth.LoginRequest
	if !validators.IsFormRequest(r) {
		err := validators.DecodeJSONBody(r, &body)
		return body, err
	}

	values, err := validators.FormValues(r, "username", "password")
	if err != nil {
		return body, err
	}
	body.Email = values["username"]
	body.Password = values["password"]
	if err := validators.ValidateStruct(&body); err != nil {
		return body, err
	}
	return body, nil
}
