package gifts

import (
	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/pkg/db/models"
	"github.com/andrelucena/celebra-backend/pkg/types"
)

// CreateGiftInput carries the fields accepted when a host adds a gift.
type CreateGiftInput struct {
	EventID      uuid.UUID
	Name         string
	Description  *string
	Category     *string
	ReferenceURL *string
	ImageRef     *string
}

// UpdateGiftInput is a partial patch. Nil pointers and unset Patch fields
// leave the prior value untouched; the Image patch distinguishes "clear"
// (null) from "leave unchanged" (absent) and "replace" (value).
type UpdateGiftInput struct {
	Name         *string
	Description  types.Patch[string]
	Category     types.Patch[string]
	ReferenceURL types.Patch[string]
	Image        types.Patch[string]
}

// GiftView is a gift enriched with the reserver's display name and a
// resolvable image URL.
type GiftView struct {
	models.Gift
	ReservedByName *string `json:"reserved_by_name,omitempty"`
	ImageURL       *string `json:"image_url,omitempty"`
}
