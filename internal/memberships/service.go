package memberships

import (
	"context"

	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/pkg/db/models"
	"github.com/andrelucena/celebra-backend/pkg/enums"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
)

// Service answers authorization questions derived from membership rows.
type Service interface {
	RoleOf(ctx context.Context, eventID, userID uuid.UUID) (*enums.MemberRole, error)
	RequireHost(ctx context.Context, eventID, userID uuid.UUID) error
	EnsureGuest(ctx context.Context, eventID, userID uuid.UUID) error
	MembershipFor(ctx context.Context, eventID, userID uuid.UUID) (*models.Membership, error)
}

type service struct {
	repo Repository
}

// NewService wires memberships dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "memberships repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RoleOf(ctx context.Context, eventID, userID uuid.UUID) (*enums.MemberRole, error) {
	if eventID == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	role, err := s.repo.RoleOf(ctx, eventID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership role")
	}
	return role, nil
}

// RequireHost fails with FORBIDDEN unless the user holds a host membership
// for the event.
func (s *service) RequireHost(ctx context.Context, eventID, userID uuid.UUID) error {
	role, err := s.RoleOf(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if role == nil || *role != enums.MemberRoleHost {
		return pkgerrors.New(pkgerrors.CodeForbidden, "host membership required")
	}
	return nil
}

// MembershipFor returns the caller's membership row, or nil when none exists.
func (s *service) MembershipFor(ctx context.Context, eventID, userID uuid.UUID) (*models.Membership, error) {
	if eventID == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	membership, err := s.repo.Get(ctx, eventID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return membership, nil
}

func (s *service) EnsureGuest(ctx context.Context, eventID, userID uuid.UUID) error {
	if eventID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id and user id required")
	}
	if err := s.repo.EnsureGuest(ctx, eventID, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure guest membership")
	}
	return nil
}
