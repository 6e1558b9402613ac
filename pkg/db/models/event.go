package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/andrelucena/celebra-backend/pkg/enums"
)

// Event is the top-level celebration entity a host creates and shares.
// The slug is globally unique and immutable once assigned.
type Event struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	Slug             string          `gorm:"column:slug;uniqueIndex:idx_events_slug;not null"`
	EventType        enums.EventType `gorm:"column:event_type;not null"`
	CustomEventType  *string         `gorm:"column:custom_event_type"`
	Hosts            pq.StringArray  `gorm:"column:hosts;type:text[];not null"`
	IsPublic         bool            `gorm:"column:is_public;not null;default:false"`
	PartnerOneName   *string         `gorm:"column:partner_one_name"`
	PartnerTwoName   *string         `gorm:"column:partner_two_name"`
	CreatedByUserID  uuid.UUID       `gorm:"column:created_by_user_id;type:uuid;not null"`
	CreatedByPartner *enums.Partner  `gorm:"column:created_by_partner"`
	Date             *time.Time      `gorm:"column:date"`
	Location         *string         `gorm:"column:location"`
	Description      *string         `gorm:"column:description"`
	CoverImageRef    *string         `gorm:"column:cover_image_ref"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
