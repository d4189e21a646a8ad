package controllers

import (
	"context"
	"net/http"

	"github.com/nutricart/nutricart-backend/api/responses"
	"github.com/nutricart/nutricart-backend/api/validators"
	"github.com/nutricart/nutricart-backend/internal/email"
	pkgerrors "github.com/nutricart/nutricart-backend/pkg/errors"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/sendgrid"
	"github.com/nutricart/nutricart-backend/pkg/types"
)

type emailQueue interface {
	Enqueue(ctx context.Context, msg sendgrid.Message) error
}

// EmailSend queues an HTML message for background delivery.
func EmailSend(queue emailQueue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if queue == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "email dispatcher unavailable"))
			return
		}

		var body email.SendRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := queue.Enqueue(r.Context(), body.ToMessage()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, types.MessageResponse{Message: "Email queued"})
	}
}
