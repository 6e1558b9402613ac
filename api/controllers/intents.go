package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/api/middleware"
	"github.com/andrelucena/celebra-backend/api/responses"
	"github.com/andrelucena/celebra-backend/api/validators"
	"github.com/andrelucena/celebra-backend/internal/intents"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	"github.com/andrelucena/celebra-backend/pkg/logger"
)

const visitorIDHeader = "X-Visitor-Id"

type intentStageRequest struct {
	Kind   string         `json:"kind" validate:"required,oneof=reserve_gift publish_draft"`
	GiftID *uuid.UUID     `json:"gift_id,omitempty"`
	Draft  *intents.Draft `json:"draft,omitempty"`
}

// IntentStage parks a pending action for an anonymous visitor. The visitor
// is identified by the X-Visitor-Id header minted client-side.
func IntentStage(svc intents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "intents service unavailable"))
			return
		}

		visitorID := strings.TrimSpace(r.Header.Get(visitorIDHeader))
		if visitorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Visitor-Id header is required"))
			return
		}

		var body intentStageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent := intents.Intent{
			Kind:   intents.Kind(body.Kind),
			GiftID: body.GiftID,
			Draft:  body.Draft,
		}
		if err := svc.Stage(r.Context(), visitorID, intent); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "staged"})
	}
}

// IntentResume replays the visitor's staged action under the now
// authenticated caller's identity.
func IntentResume(svc intents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "intents service unavailable"))
			return
		}

		visitorID := strings.TrimSpace(r.Header.Get(visitorIDHeader))
		if visitorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Visitor-Id header is required"))
			return
		}

		result, err := svc.Resume(r.Context(), visitorID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
