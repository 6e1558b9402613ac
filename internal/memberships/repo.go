package memberships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrelucena/celebra-backend/pkg/db/models"
	"github.com/andrelucena/celebra-backend/pkg/enums"
)

// Repository exposes persistence helpers for event memberships.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, membership *models.Membership) error
	EnsureGuest(ctx context.Context, eventID, userID uuid.UUID) error
	RoleOf(ctx context.Context, eventID, userID uuid.UUID) (*enums.MemberRole, error)
	Get(ctx context.Context, eventID, userID uuid.UUID) (*models.Membership, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]models.Membership, error)
	DeleteForEvent(ctx context.Context, eventID uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a memberships repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

// EnsureGuest inserts a guest membership if none exists for the pair. An
// existing row of either role is left untouched, so hosts never get demoted.
func (r *repositoryImpl) EnsureGuest(ctx context.Context, eventID, userID uuid.UUID) error {
	membership := models.Membership{
		ID:      uuid.New(),
		EventID: eventID,
		UserID:  userID,
		Role:    enums.MemberRoleGuest,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&membership).Error
}

// RoleOf returns the member's role for the event, or nil when no membership exists.
func (r *repositoryImpl) RoleOf(ctx context.Context, eventID, userID uuid.UUID) (*enums.MemberRole, error) {
	membership, err := r.Get(ctx, eventID, userID)
	if err != nil || membership == nil {
		return nil, err
	}
	role := membership.Role
	return &role, nil
}

func (r *repositoryImpl) Get(ctx context.Context, eventID, userID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		First(&membership, "event_id = ? AND user_id = ?", eventID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	var rows []models.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]models.Membership, error) {
	var rows []models.Membership
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("joined_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) DeleteForEvent(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Membership{}, "event_id = ?", eventID).Error
}
