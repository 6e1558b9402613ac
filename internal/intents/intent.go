package intents

import (
	"time"

	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/internal/events"
)

// Kind names the deferred action a visitor staged before logging in.
type Kind string

const (
	KindReserveGift  Kind = "reserve_gift"
	KindPublishDraft Kind = "publish_draft"
)

// IsValid reports whether the value is a known Kind.
func (k Kind) IsValid() bool {
	return k == KindReserveGift || k == KindPublishDraft
}

// Draft is a pre-publish event held for an unauthenticated visitor. It
// becomes void once published or explicitly cleared.
type Draft struct {
	Name             string             `json:"name"`
	EventType        string             `json:"event_type"`
	CustomEventType  *string            `json:"custom_event_type,omitempty"`
	Hosts            []string           `json:"hosts"`
	IsPublic         bool               `json:"is_public"`
	CreatedByPartner *string            `json:"created_by_partner,omitempty"`
	Date             *time.Time         `json:"date,omitempty"`
	Location         *string            `json:"location,omitempty"`
	Description      *string            `json:"description,omitempty"`
	CoverImageRef    *string            `json:"cover_image_ref,omitempty"`
	Gifts            []events.DraftGift `json:"gifts,omitempty"`
}

// Intent is the single pending-action marker stored per visitor. At most
// one intent exists per visitor id; staging a new one replaces the old.
type Intent struct {
	Kind     Kind       `json:"kind"`
	GiftID   *uuid.UUID `json:"gift_id,omitempty"`
	Draft    *Draft     `json:"draft,omitempty"`
	StagedAt time.Time  `json:"staged_at"`
}
