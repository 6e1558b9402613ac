package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/pkg/db/models"
	"github.com/andrelucena/celebra-backend/pkg/enums"
	"github.com/andrelucena/celebra-backend/pkg/types"
)

// EventTypeOption is one entry of the static event-type catalog.
type EventTypeOption struct {
	Value             string `json:"value"`
	Label             string `json:"label"`
	SupportsPairNames bool   `json:"supports_pair_names"`
}

// CreateEventInput carries the fields accepted when creating an event.
type CreateEventInput struct {
	Name             string
	EventType        enums.EventType
	CustomEventType  *string
	Hosts            []string
	IsPublic         bool
	CreatedByPartner *enums.Partner
	Date             *time.Time
	Location         *string
	Description      *string
	CoverImageRef    *string
}

// CreateEventResult identifies the freshly created event.
type CreateEventResult struct {
	EventID uuid.UUID `json:"event_id"`
	Slug    string    `json:"slug"`
}

// UpdateEventInput is a partial patch. Nil pointers and unset Patch fields
// leave the prior value untouched; Patch null clears the field.
type UpdateEventInput struct {
	Name            *string
	EventType       *enums.EventType
	CustomEventType types.Patch[string]
	Hosts           []string
	IsPublic        *bool
	Date            types.Patch[time.Time]
	Location        types.Patch[string]
	Description     types.Patch[string]
	CoverImage      types.Patch[string]
}

// DraftGift is a gift shape carried inside a pre-publish draft. It becomes a
// real gift row when the draft is published.
type DraftGift struct {
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	ReferenceURL *string `json:"reference_url,omitempty"`
	ImageRef     *string `json:"image_ref,omitempty"`
}

// EventView is an event enriched with a resolvable cover image URL.
type EventView struct {
	models.Event
	CoverImageURL *string `json:"cover_image_url,omitempty"`
}

// GroupedEvents splits the caller's events by membership role.
type GroupedEvents struct {
	Hosting   []EventView `json:"hosting"`
	Attending []EventView `json:"attending"`
}
