package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/api/middleware"
	"github.com/andrelucena/celebra-backend/api/responses"
	"github.com/andrelucena/celebra-backend/api/validators"
	"github.com/andrelucena/celebra-backend/internal/events"
	"github.com/andrelucena/celebra-backend/internal/gifts"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	"github.com/andrelucena/celebra-backend/pkg/logger"
	"github.com/andrelucena/celebra-backend/pkg/types"
)

type giftCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	ReferenceURL *string `json:"reference_url,omitempty" validate:"omitempty,url"`
	ImageRef     *string `json:"image_ref,omitempty"`
}

type giftUpdateRequest struct {
	Name         *string             `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description  types.Patch[string] `json:"description,omitempty"`
	Category     types.Patch[string] `json:"category,omitempty"`
	ReferenceURL types.Patch[string] `json:"reference_url,omitempty"`
	Image        types.Patch[string] `json:"image,omitempty"`
}

// GiftListBySlug resolves the public page's slug to its event and returns
// the registry, so the shared link needs no separate id lookup.
func GiftListBySlug(eventsSvc events.Service, svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eventsSvc == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		view, err := eventsSvc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListForEvent(r.Context(), view.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}

// GiftList returns the event's registry in stable order, with reserver names
// resolved for display.
func GiftList(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		views, err := svc.ListForEvent(r.Context(), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}

// GiftCreate adds a gift to the event's registry. Host only.
func GiftCreate(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		var body giftCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		giftID, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), gifts.CreateGiftInput{
			EventID:      eventID,
			Name:         body.Name,
			Description:  body.Description,
			Category:     body.Category,
			ReferenceURL: body.ReferenceURL,
			ImageRef:     body.ImageRef,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]uuid.UUID{"gift_id": giftID})
	}
}

// GiftUpdate patches mutable gift fields. Host only.
func GiftUpdate(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		giftID, err := uuid.Parse(chi.URLParam(r, "giftId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gift id"))
			return
		}

		var body giftUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := gifts.UpdateGiftInput{
			Name:         body.Name,
			Description:  body.Description,
			Category:     body.Category,
			ReferenceURL: body.ReferenceURL,
			Image:        body.Image,
		}
		if err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), giftID, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// GiftDelete removes a gift from the registry. Host only.
func GiftDelete(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		giftID, err := uuid.Parse(chi.URLParam(r, "giftId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gift id"))
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), giftID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GiftReserve claims a gift for the caller. At most one caller wins; the
// losers get ALREADY_CLAIMED.
func GiftReserve(svc gifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gifts service unavailable"))
			return
		}

		giftID, err := uuid.Parse(chi.URLParam(r, "giftId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gift id"))
			return
		}

		if err := svc.Reserve(r.Context(), giftID, middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "reserved"})
	}
}
