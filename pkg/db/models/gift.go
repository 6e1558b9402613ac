package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/pkg/enums"
)

// Gift is a single wishable item within an event's registry. ReservedByUserID
// and ReservedAt are both set exactly when Status leaves available.
type Gift struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	EventID          uuid.UUID        `gorm:"column:event_id;type:uuid;not null;index"`
	Name             string           `gorm:"column:name;not null"`
	Description      *string          `gorm:"column:description"`
	Category         *string          `gorm:"column:category"`
	ReferenceURL     *string          `gorm:"column:reference_url"`
	ImageRef         *string          `gorm:"column:image_ref"`
	Status           enums.GiftStatus `gorm:"column:status;not null;default:available"`
	ReservedByUserID *uuid.UUID       `gorm:"column:reserved_by_user_id;type:uuid"`
	ReservedAt       *time.Time       `gorm:"column:reserved_at"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
