package gifts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/internal/memberships"
	"github.com/andrelucena/celebra-backend/internal/users"
	"github.com/andrelucena/celebra-backend/pkg/db/models"
	"github.com/andrelucena/celebra-backend/pkg/enums"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	"github.com/andrelucena/celebra-backend/pkg/logger"
)

// URLResolver maps a stored blob ref to a fetchable URL.
type URLResolver interface {
	ResolveURL(ref string) (string, bool)
}

// BlobReleaser deletes a stored blob.
type BlobReleaser interface {
	Release(ctx context.Context, ref string) error
}

// Service defines the gift registry operations, including the reservation
// state machine.
type Service interface {
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]GiftView, error)
	Create(ctx context.Context, callerID uuid.UUID, input CreateGiftInput) (uuid.UUID, error)
	Update(ctx context.Context, callerID, giftID uuid.UUID, input UpdateGiftInput) error
	Delete(ctx context.Context, callerID, giftID uuid.UUID) error
	Reserve(ctx context.Context, giftID, callerID uuid.UUID) error
}

type service struct {
	repo     Repository
	members  memberships.Service
	users    users.Repository
	resolver URLResolver
	blobs    BlobReleaser
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires gift registry dependencies.
func NewService(
	repo Repository,
	members memberships.Service,
	usersRepo users.Repository,
	resolver URLResolver,
	blobs BlobReleaser,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gifts repository required")
	}
	if members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "memberships service required")
	}
	if usersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{
		repo:     repo,
		members:  members,
		users:    usersRepo,
		resolver: resolver,
		blobs:    blobs,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// ListForEvent returns the event's gifts in stable chronological order,
// enriched with reserver display names and resolved image URLs.
func (s *service) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]GiftView, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}

	rows, err := s.repo.ListForEvent(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gifts")
	}

	reserverIDs := make([]uuid.UUID, 0, len(rows))
	for _, gift := range rows {
		if gift.ReservedByUserID != nil {
			reserverIDs = append(reserverIDs, *gift.ReservedByUserID)
		}
	}
	names, err := s.users.DisplayNames(ctx, reserverIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve reserver names")
	}

	views := make([]GiftView, 0, len(rows))
	for _, gift := range rows {
		view := GiftView{Gift: gift}
		if gift.ReservedByUserID != nil {
			if name := strings.TrimSpace(names[*gift.ReservedByUserID]); name != "" {
				view.ReservedByName = &name
			}
		}
		if s.resolver != nil && gift.ImageRef != nil {
			if url, ok := s.resolver.ResolveURL(*gift.ImageRef); ok {
				view.ImageURL = &url
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateGiftInput) (uuid.UUID, error) {
	if callerID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.EventID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "gift name is required")
	}

	if err := s.members.RequireHost(ctx, input.EventID, callerID); err != nil {
		return uuid.Nil, err
	}

	gift := &models.Gift{
		ID:           uuid.New(),
		EventID:      input.EventID,
		Name:         name,
		Description:  input.Description,
		Category:     trimPtr(input.Category),
		ReferenceURL: trimPtr(input.ReferenceURL),
		ImageRef:     trimPtr(input.ImageRef),
		Status:       enums.GiftStatusAvailable,
	}
	if err := s.repo.Create(ctx, gift); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gift")
	}
	return gift.ID, nil
}

func (s *service) Update(ctx context.Context, callerID, giftID uuid.UUID, input UpdateGiftInput) error {
	gift, err := s.loadForHost(ctx, callerID, giftID)
	if err != nil {
		return err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "gift name cannot be empty")
		}
		gift.Name = name
	}
	if input.Description.IsSet() {
		if value, ok := input.Description.Value(); ok {
			gift.Description = &value
		} else {
			gift.Description = nil
		}
	}
	if input.Category.IsSet() {
		if value, ok := input.Category.Value(); ok {
			gift.Category = trimPtr(&value)
		} else {
			gift.Category = nil
		}
	}
	if input.ReferenceURL.IsSet() {
		if value, ok := input.ReferenceURL.Value(); ok {
			gift.ReferenceURL = trimPtr(&value)
		} else {
			gift.ReferenceURL = nil
		}
	}

	var staleImage *string
	if input.Image.IsSet() {
		previous := gift.ImageRef
		if value, ok := input.Image.Value(); ok {
			gift.ImageRef = trimPtr(&value)
		} else {
			gift.ImageRef = nil
		}
		if previous != nil && (gift.ImageRef == nil || *gift.ImageRef != *previous) {
			staleImage = previous
		}
	}

	if err := s.repo.Save(ctx, gift); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update gift")
	}

	if staleImage != nil {
		s.releaseBlob(ctx, *staleImage)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, callerID, giftID uuid.UUID) error {
	gift, err := s.loadForHost(ctx, callerID, giftID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, giftID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete gift")
	}

	if gift.ImageRef != nil {
		s.releaseBlob(ctx, *gift.ImageRef)
	}
	return nil
}

// Reserve moves a gift from available to reserved for the caller. A gift
// that is already claimed fails before any membership is created; callers
// racing past that check are decided by the conditional update, so exactly
// one of N concurrent callers wins and losers observe ALREADY_CLAIMED. A
// race loser's guest membership is not rolled back.
func (s *service) Reserve(ctx context.Context, giftID, callerID uuid.UUID) error {
	if callerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if giftID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "gift id is required")
	}

	gift, err := s.repo.GetByID(ctx, giftID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift")
	}
	if gift == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "gift not found")
	}
	if gift.Status != enums.GiftStatusAvailable {
		return pkgerrors.New(pkgerrors.CodeAlreadyClaimed, "gift already claimed")
	}

	if err := s.members.EnsureGuest(ctx, gift.EventID, callerID); err != nil {
		return err
	}

	result, err := s.repo.Reserve(ctx, giftID, callerID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve gift")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "gift not found")
	}
	if !result.Updated {
		return pkgerrors.New(pkgerrors.CodeAlreadyClaimed, "gift already claimed")
	}
	return nil
}

func (s *service) loadForHost(ctx context.Context, callerID, giftID uuid.UUID) (*models.Gift, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if giftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift id is required")
	}

	gift, err := s.repo.GetByID(ctx, giftID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift")
	}
	if gift == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift not found")
	}

	if err := s.members.RequireHost(ctx, gift.EventID, callerID); err != nil {
		return nil, err
	}
	return gift, nil
}

func (s *service) releaseBlob(ctx context.Context, ref string) {
	if s.blobs == nil || ref == "" {
		return
	}
	if err := s.blobs.Release(ctx, ref); err != nil && s.logg != nil {
		ctx = s.logg.WithField(ctx, "ref", ref)
		ctx = s.logg.WithField(ctx, "error", err.Error())
		s.logg.Warn(ctx, "failed to release gift image blob")
	}
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
