package models

import (
	"time"

	"github.com/google/uuid"
)

// EventConfig is an event-scoped settings row. Rows are cascade-deleted with
// their event.
type EventConfig struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid;not null;uniqueIndex:idx_event_configs_event_key"`
	Key       string    `gorm:"column:key;not null;uniqueIndex:idx_event_configs_event_key"`
	Value     string    `gorm:"column:value;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
