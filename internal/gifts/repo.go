package gifts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andrelucena/celebra-backend/pkg/db/models"
	"github.com/andrelucena/celebra-backend/pkg/enums"
)

// Repository exposes persistence helpers for gifts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, gift *models.Gift) error
	CreateBatch(ctx context.Context, gifts []models.Gift) error
	Save(ctx context.Context, gift *models.Gift) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Gift, error)
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]models.Gift, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteForEvent(ctx context.Context, eventID uuid.UUID) error
	Reserve(ctx context.Context, giftID, userID uuid.UUID, now time.Time) (reserveResult, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gifts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type reserveResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, gift *models.Gift) error {
	return r.db.WithContext(ctx).Create(gift).Error
}

func (r *repositoryImpl) CreateBatch(ctx context.Context, gifts []models.Gift) error {
	if len(gifts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&gifts).Error
}

func (r *repositoryImpl) Save(ctx context.Context, gift *models.Gift) error {
	return r.db.WithContext(ctx).Save(gift).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Gift, error) {
	var gift models.Gift
	err := r.db.WithContext(ctx).First(&gift, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &gift, nil
}

func (r *repositoryImpl) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]models.Gift, error) {
	var rows []models.Gift
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Gift{}, "id = ?", id).Error
}

func (r *repositoryImpl) DeleteForEvent(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Gift{}, "event_id = ?", eventID).Error
}

// Reserve flips an available gift to reserved with a single conditional
// update. RowsAffected decides the race: exactly one concurrent caller can
// match status = available.
func (r *repositoryImpl) Reserve(ctx context.Context, giftID, userID uuid.UUID, now time.Time) (reserveResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Gift{}).
		Where("id = ? AND status = ?", giftID, enums.GiftStatusAvailable).
		UpdateColumns(map[string]any{
			"status":              enums.GiftStatusReserved,
			"reserved_by_user_id": userID,
			"reserved_at":         now,
			"updated_at":          now,
		})
	if result.Error != nil {
		return reserveResult{}, result.Error
	}

	outcome := reserveResult{Updated: result.RowsAffected > 0}
	if outcome.Updated {
		outcome.Found = true
		return outcome, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Gift{}).
		Where("id = ?", giftID).
		Count(&count).Error; err != nil {
		return reserveResult{}, err
	}
	outcome.Found = count > 0
	return outcome, nil
}
