package memberships

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andrelucena/celebra-backend/pkg/db/models"
	"github.com/andrelucena/celebra-backend/pkg/enums"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
)

type stubRepo struct {
	Repository
	roleOf      func(ctx context.Context, eventID, userID uuid.UUID) (*enums.MemberRole, error)
	ensureGuest func(ctx context.Context, eventID, userID uuid.UUID) error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) RoleOf(ctx context.Context, eventID, userID uuid.UUID) (*enums.MemberRole, error) {
	return s.roleOf(ctx, eventID, userID)
}

func (s *stubRepo) EnsureGuest(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.ensureGuest(ctx, eventID, userID)
}

func (s *stubRepo) Create(ctx context.Context, m *models.Membership) error { return nil }

func rolePtr(r enums.MemberRole) *enums.MemberRole { return &r }

func TestRequireHost(t *testing.T) {
	cases := []struct {
		name     string
		role     *enums.MemberRole
		wantCode pkgerrors.Code
	}{
		{name: "host passes", role: rolePtr(enums.MemberRoleHost)},
		{name: "guest is forbidden", role: rolePtr(enums.MemberRoleGuest), wantCode: pkgerrors.CodeForbidden},
		{name: "non-member is forbidden", role: nil, wantCode: pkgerrors.CodeForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubRepo{
				roleOf: func(ctx context.Context, eventID, userID uuid.UUID) (*enums.MemberRole, error) {
					return tc.role, nil
				},
			}
			svc, err := NewService(repo)
			if err != nil {
				t.Fatalf("new service: %v", err)
			}

			err = svc.RequireHost(context.Background(), uuid.New(), uuid.New())
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("expected host to pass, got %v", err)
				}
				return
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.wantCode {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestRoleOfSkipsLookupForNilIDs(t *testing.T) {
	repo := &stubRepo{
		roleOf: func(ctx context.Context, eventID, userID uuid.UUID) (*enums.MemberRole, error) {
			t.Fatal("repo should not be called for nil ids")
			return nil, nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	role, err := svc.RoleOf(context.Background(), uuid.Nil, uuid.New())
	if err != nil || role != nil {
		t.Fatalf("expected nil role without error, got role=%v err=%v", role, err)
	}
}

func TestEnsureGuestValidatesIDs(t *testing.T) {
	repo := &stubRepo{
		ensureGuest: func(ctx context.Context, eventID, userID uuid.UUID) error { return nil },
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.EnsureGuest(context.Background(), uuid.Nil, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
