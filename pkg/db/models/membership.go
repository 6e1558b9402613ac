package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/pkg/enums"
)

// Membership links a user with an event and captures their role. At most
// one row exists per (event, user) pair.
type Membership struct {
	ID       uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	EventID  uuid.UUID        `gorm:"column:event_id;type:uuid;not null;uniqueIndex:idx_memberships_event_user"`
	UserID   uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_memberships_event_user"`
	Role     enums.MemberRole `gorm:"column:role;not null"`
	JoinedAt time.Time        `gorm:"column:joined_at;autoCreateTime"`
}
