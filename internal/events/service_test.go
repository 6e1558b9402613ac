package events

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andrelucena/celebra-backend/internal/gifts"
	"github.com/andrelucena/celebra-backend/internal/memberships"
	"github.com/andrelucena/celebra-backend/pkg/db/models"
	"github.com/andrelucena/celebra-backend/pkg/enums"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	"github.com/andrelucena/celebra-backend/pkg/types"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type fakeBlobs struct {
	mu       sync.Mutex
	released []string
	fail     bool
}

func (f *fakeBlobs) Release(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("blob store down")
	}
	f.released = append(f.released, ref)
	return nil
}

type fakeResolver struct{}

func (fakeResolver) ResolveURL(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	return "https://cdn.test/" + ref, true
}

type serviceFixture struct {
	conn    *gorm.DB
	svc     Service
	blobs   *fakeBlobs
	members memberships.Repository
	gifts   gifts.Repository
}

func setupService(t *testing.T) *serviceFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:events_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Event{}, &models.EventConfig{}, &models.Membership{}, &models.Gift{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	blobs := &fakeBlobs{}
	membersRepo := memberships.NewRepository(conn)
	giftsRepo := gifts.NewRepository(conn)
	svc, err := NewService(gormTxRunner{db: conn}, NewRepository(conn), membersRepo, giftsRepo, fakeResolver{}, blobs, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &serviceFixture{conn: conn, svc: svc, blobs: blobs, members: membersRepo, gifts: giftsRepo}
}

func createTestEvent(t *testing.T, f *serviceFixture, callerID uuid.UUID) *CreateEventResult {
	t.Helper()

	result, err := f.svc.Create(context.Background(), callerID, CreateEventInput{
		Name:      "Chá de Panela",
		EventType: enums.EventTypeChaDePanela,
		Hosts:     []string{"Ana Silva", "Ana Souza"},
		IsPublic:  true,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return result
}

func TestCreateEventAssignsSlugAndHostMembership(t *testing.T) {
	f := setupService(t)
	callerID := uuid.New()

	result := createTestEvent(t, f, callerID)

	pattern := regexp.MustCompile(`^ana-silva-ana-souza-cha-de-panela-\d{4}$`)
	if !pattern.MatchString(result.Slug) {
		t.Fatalf("slug %q does not match %s", result.Slug, pattern)
	}

	role, err := f.members.RoleOf(context.Background(), result.EventID, callerID)
	if err != nil {
		t.Fatalf("role of: %v", err)
	}
	if role == nil || *role != enums.MemberRoleHost {
		t.Fatalf("expected creator to become host, got %v", role)
	}

	view, err := f.svc.GetBySlug(context.Background(), result.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if view.PartnerOneName == nil || *view.PartnerOneName != "Ana Silva" {
		t.Fatalf("expected partner one derived from first host, got %v", view.PartnerOneName)
	}
	if view.PartnerTwoName == nil || *view.PartnerTwoName != "Ana Souza" {
		t.Fatalf("expected partner two derived from second host, got %v", view.PartnerTwoName)
	}
}

func TestCreateEventValidation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateEventInput
	}{
		{
			name:  "empty hosts",
			input: CreateEventInput{Name: "Festa", EventType: enums.EventTypeAniversario, Hosts: []string{" ", ""}},
		},
		{
			name:  "other without custom type",
			input: CreateEventInput{Name: "Festa", EventType: enums.EventTypeOther, Hosts: []string{"Ana"}},
		},
		{
			name:  "unknown event type",
			input: CreateEventInput{Name: "Festa", EventType: enums.EventType("bodas"), Hosts: []string{"Ana"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, uuid.New(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestCreateEventRequiresIdentity(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Create(context.Background(), uuid.Nil, CreateEventInput{
		Name:      "Festa",
		EventType: enums.EventTypeAniversario,
		Hosts:     []string{"Ana"},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestCreateEventTruncatesHostsToFive(t *testing.T) {
	f := setupService(t)

	result, err := f.svc.Create(context.Background(), uuid.New(), CreateEventInput{
		Name:      "Festa",
		EventType: enums.EventTypeAniversario,
		Hosts:     []string{"A", "B", "C", "D", "E", "F", "G"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := f.svc.GetBySlug(context.Background(), result.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if len(view.Hosts) != 5 {
		t.Fatalf("expected 5 hosts after truncation, got %d", len(view.Hosts))
	}
}

func TestUpdateEventIsHostOnly(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	hostID := uuid.New()
	result := createTestEvent(t, f, hostID)

	guestID := uuid.New()
	if err := f.members.EnsureGuest(ctx, result.EventID, guestID); err != nil {
		t.Fatalf("ensure guest: %v", err)
	}

	newName := "Novo Nome"
	for _, caller := range []uuid.UUID{guestID, uuid.New()} {
		err := f.svc.Update(ctx, caller, result.EventID, UpdateEventInput{Name: &newName})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
			t.Fatalf("expected FORBIDDEN for caller %s, got %v", caller, err)
		}
	}

	if err := f.svc.Update(ctx, hostID, result.EventID, UpdateEventInput{Name: &newName}); err != nil {
		t.Fatalf("host update: %v", err)
	}
	view, err := f.svc.GetBySlug(ctx, result.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if view.Name != newName {
		t.Fatalf("expected name updated, got %q", view.Name)
	}
}

func TestUpdateEventValidatesEffectiveType(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	hostID := uuid.New()
	result := createTestEvent(t, f, hostID)

	otherType := enums.EventTypeOther
	err := f.svc.Update(ctx, hostID, result.EventID, UpdateEventInput{EventType: &otherType})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR switching to other without description, got %v", err)
	}

	err = f.svc.Update(ctx, hostID, result.EventID, UpdateEventInput{
		EventType:       &otherType,
		CustomEventType: types.PatchValue("Bodas de Prata"),
	})
	if err != nil {
		t.Fatalf("update with custom type: %v", err)
	}
}

func TestUpdateEventCoverPatchReleasesStaleBlob(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	hostID := uuid.New()
	result, err := f.svc.Create(ctx, hostID, CreateEventInput{
		Name:          "Festa",
		EventType:     enums.EventTypeAniversario,
		Hosts:         []string{"Ana"},
		CoverImageRef: ptr("blobs/old-cover"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Absent patch keeps the image.
	if err := f.svc.Update(ctx, hostID, result.EventID, UpdateEventInput{}); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if len(f.blobs.released) != 0 {
		t.Fatalf("no-op update must not release blobs, released %v", f.blobs.released)
	}

	// Replacement releases the old ref.
	if err := f.svc.Update(ctx, hostID, result.EventID, UpdateEventInput{
		CoverImage: types.PatchValue("blobs/new-cover"),
	}); err != nil {
		t.Fatalf("replace cover: %v", err)
	}
	if len(f.blobs.released) != 1 || f.blobs.released[0] != "blobs/old-cover" {
		t.Fatalf("expected old cover released, got %v", f.blobs.released)
	}

	// Explicit null clears and releases.
	if err := f.svc.Update(ctx, hostID, result.EventID, UpdateEventInput{
		CoverImage: types.PatchNull[string](),
	}); err != nil {
		t.Fatalf("clear cover: %v", err)
	}
	if len(f.blobs.released) != 2 || f.blobs.released[1] != "blobs/new-cover" {
		t.Fatalf("expected new cover released on clear, got %v", f.blobs.released)
	}

	view, err := f.svc.GetBySlug(ctx, result.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if view.CoverImageRef != nil {
		t.Fatalf("expected cover cleared, got %v", *view.CoverImageRef)
	}
}

func TestDeleteEventCascades(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	hostID := uuid.New()
	result, err := f.svc.Create(ctx, hostID, CreateEventInput{
		Name:          "Festa",
		EventType:     enums.EventTypeAniversario,
		Hosts:         []string{"Ana"},
		CoverImageRef: ptr("blobs/cover"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	gift := &models.Gift{
		ID:       uuid.New(),
		EventID:  result.EventID,
		Name:     "Jogo de Panelas",
		ImageRef: ptr("blobs/gift-image"),
		Status:   enums.GiftStatusAvailable,
	}
	if err := f.gifts.Create(ctx, gift); err != nil {
		t.Fatalf("seed gift: %v", err)
	}
	if err := f.members.EnsureGuest(ctx, result.EventID, uuid.New()); err != nil {
		t.Fatalf("seed guest: %v", err)
	}

	if err := f.svc.Delete(ctx, hostID, result.EventID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for table, model := range map[string]any{
		"gifts":       &models.Gift{},
		"memberships": &models.Membership{},
		"events":      &models.Event{},
	} {
		var count int64
		if err := f.conn.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected %s emptied by cascade, got %d rows", table, count)
		}
	}

	released := map[string]bool{}
	for _, ref := range f.blobs.released {
		released[ref] = true
	}
	if !released["blobs/gift-image"] || !released["blobs/cover"] {
		t.Fatalf("expected gift and cover blobs released, got %v", f.blobs.released)
	}
}

func TestDeleteEventSurvivesBlobFailures(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	hostID := uuid.New()
	result, err := f.svc.Create(ctx, hostID, CreateEventInput{
		Name:          "Festa",
		EventType:     enums.EventTypeAniversario,
		Hosts:         []string{"Ana"},
		CoverImageRef: ptr("blobs/cover"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f.blobs.fail = true
	if err := f.svc.Delete(ctx, hostID, result.EventID); err != nil {
		t.Fatalf("delete must not fail on blob release errors: %v", err)
	}

	var count int64
	if err := f.conn.Model(&models.Event{}).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected event deleted despite blob failure, got %d rows", count)
	}
}

func TestSearchPublicEvents(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	hostID := uuid.New()
	createTestEvent(t, f, hostID)

	if _, err := f.svc.Create(ctx, hostID, CreateEventInput{
		Name:      "Festa Secreta",
		EventType: enums.EventTypeAniversario,
		Hosts:     []string{"Bia"},
		IsPublic:  false,
	}); err != nil {
		t.Fatalf("create private event: %v", err)
	}

	// Diacritic and case insensitive.
	views, err := f.svc.Search(ctx, "CHA de panela")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 match, got %d", len(views))
	}

	// Private events never surface, even on exact match.
	views, err = f.svc.Search(ctx, "Secreta")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected private event hidden, got %d matches", len(views))
	}
}

func TestSearchCapsResults(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	hostID := uuid.New()
	for i := 0; i < searchResultCap+5; i++ {
		if _, err := f.svc.Create(ctx, hostID, CreateEventInput{
			Name:      fmt.Sprintf("Festa %d", i),
			EventType: enums.EventTypeAniversario,
			Hosts:     []string{"Ana"},
			IsPublic:  true,
		}); err != nil {
			t.Fatalf("create event %d: %v", i, err)
		}
	}

	views, err := f.svc.Search(ctx, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(views) != searchResultCap {
		t.Fatalf("expected results capped at %d, got %d", searchResultCap, len(views))
	}
}

func TestListForUserGroupsByRole(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	userID := uuid.New()
	hosted := createTestEvent(t, f, userID)

	otherHost := uuid.New()
	attended := createTestEvent(t, f, otherHost)
	if err := f.members.EnsureGuest(ctx, attended.EventID, userID); err != nil {
		t.Fatalf("ensure guest: %v", err)
	}

	grouped, err := f.svc.ListForUser(ctx, userID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(grouped.Hosting) != 1 || grouped.Hosting[0].ID != hosted.EventID {
		t.Fatalf("unexpected hosting group: %+v", grouped.Hosting)
	}
	if len(grouped.Attending) != 1 || grouped.Attending[0].ID != attended.EventID {
		t.Fatalf("unexpected attending group: %+v", grouped.Attending)
	}

	// Anonymous callers get empty groups, not an error.
	empty, err := f.svc.ListForUser(ctx, uuid.Nil)
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if len(empty.Hosting) != 0 || len(empty.Attending) != 0 {
		t.Fatalf("expected empty groups for anonymous caller, got %+v", empty)
	}
}

func TestGetBySlugNotFound(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.GetBySlug(context.Background(), "missing-slug-1234")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSlugsNeverCollide(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 15; i++ {
		result, err := f.svc.Create(ctx, uuid.New(), CreateEventInput{
			Name:      "Chá de Panela",
			EventType: enums.EventTypeChaDePanela,
			Hosts:     []string{"Ana Silva", "Ana Souza"},
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[result.Slug] {
			t.Fatalf("duplicate slug %q", result.Slug)
		}
		seen[result.Slug] = true
	}
}

func ptr(s string) *string { return &s }
