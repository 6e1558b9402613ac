package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/api/middleware"
	"github.com/andrelucena/celebra-backend/api/responses"
	"github.com/andrelucena/celebra-backend/api/validators"
	"github.com/andrelucena/celebra-backend/internal/events"
	"github.com/andrelucena/celebra-backend/internal/memberships"
	"github.com/andrelucena/celebra-backend/pkg/enums"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	"github.com/andrelucena/celebra-backend/pkg/logger"
	"github.com/andrelucena/celebra-backend/pkg/types"
)

type draftGiftRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	ReferenceURL *string `json:"reference_url,omitempty" validate:"omitempty,url"`
	ImageRef     *string `json:"image_ref,omitempty"`
}

func (g draftGiftRequest) toDraft() events.DraftGift {
	return events.DraftGift{
		Name:         g.Name,
		Description:  g.Description,
		Category:     g.Category,
		ReferenceURL: g.ReferenceURL,
		ImageRef:     g.ImageRef,
	}
}

type eventCreateRequest struct {
	Name             string             `json:"name" validate:"required,min=1,max=200"`
	EventType        string             `json:"event_type" validate:"required"`
	CustomEventType  *string            `json:"custom_event_type,omitempty"`
	Hosts            []string           `json:"hosts" validate:"required,min=1"`
	IsPublic         bool               `json:"is_public"`
	CreatedByPartner *string            `json:"created_by_partner,omitempty"`
	Date             *time.Time         `json:"date,omitempty"`
	Location         *string            `json:"location,omitempty"`
	Description      *string            `json:"description,omitempty"`
	CoverImageRef    *string            `json:"cover_image_ref,omitempty"`
	Gifts            []draftGiftRequest `json:"gifts,omitempty"`
}

func (b eventCreateRequest) toInput() (events.CreateEventInput, []events.DraftGift, error) {
	eventType, err := enums.ParseEventType(b.EventType)
	if err != nil {
		return events.CreateEventInput{}, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown event type")
	}

	var partner *enums.Partner
	if b.CreatedByPartner != nil {
		parsed, err := enums.ParsePartner(*b.CreatedByPartner)
		if err != nil {
			return events.CreateEventInput{}, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown partner")
		}
		partner = &parsed
	}

	drafts := make([]events.DraftGift, 0, len(b.Gifts))
	for _, g := range b.Gifts {
		drafts = append(drafts, g.toDraft())
	}

	return events.CreateEventInput{
		Name:             b.Name,
		EventType:        eventType,
		CustomEventType:  b.CustomEventType,
		Hosts:            b.Hosts,
		IsPublic:         b.IsPublic,
		CreatedByPartner: partner,
		Date:             b.Date,
		Location:         b.Location,
		Description:      b.Description,
		CoverImageRef:    b.CoverImageRef,
	}, drafts, nil
}

type eventUpdateRequest struct {
	Name            *string                `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	EventType       *string                `json:"event_type,omitempty"`
	CustomEventType types.Patch[string]    `json:"custom_event_type,omitempty"`
	Hosts           []string               `json:"hosts,omitempty"`
	IsPublic        *bool                  `json:"is_public,omitempty"`
	Date            types.Patch[time.Time] `json:"date,omitempty"`
	Location        types.Patch[string]    `json:"location,omitempty"`
	Description     types.Patch[string]    `json:"description,omitempty"`
	CoverImage      types.Patch[string]    `json:"cover_image,omitempty"`
}

func (b eventUpdateRequest) toInput() (events.UpdateEventInput, error) {
	input := events.UpdateEventInput{
		Name:            b.Name,
		CustomEventType: b.CustomEventType,
		Hosts:           b.Hosts,
		IsPublic:        b.IsPublic,
		Date:            b.Date,
		Location:        b.Location,
		Description:     b.Description,
		CoverImage:      b.CoverImage,
	}
	if b.EventType != nil {
		eventType, err := enums.ParseEventType(*b.EventType)
		if err != nil {
			return events.UpdateEventInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown event type")
		}
		input.EventType = &eventType
	}
	return input, nil
}

// EventTypeCatalog returns the static list of supported event types.
func EventTypeCatalog(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.ListEventTypes())
	}
}

// EventCreate publishes a new event, optionally with an initial gift list.
func EventCreate(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		var body eventCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, drafts, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		callerID := middleware.UserIDFromContext(r.Context())
		result, err := svc.CreateWithGifts(r.Context(), callerID, input, drafts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// EventBySlug resolves the public registry page payload.
func EventBySlug(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		view, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// EventSearch matches public events against a free-text query.
func EventSearch(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		results, err := svc.Search(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, results)
	}
}

// MyEvents lists the caller's events grouped by role.
func MyEvents(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		grouped, err := svc.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, grouped)
	}
}

// EventUpdate patches mutable event fields. Host only.
func EventUpdate(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		var body eventUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), eventID, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// EventDelete removes the event and everything hanging off it. Host only.
func EventDelete(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), eventID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// EventMembership reports the caller's role on an event, null when none.
func EventMembership(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "memberships service unavailable"))
			return
		}

		eventID, err := uuid.Parse(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id"))
			return
		}

		role, err := svc.RoleOf(r.Context(), eventID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]*enums.MemberRole{"role": role})
	}
}
