package intents

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/internal/events"
	"github.com/andrelucena/celebra-backend/internal/gifts"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
)

type memoryIntentStore struct {
	intents map[string]Intent
}

func newMemoryIntentStore() *memoryIntentStore {
	return &memoryIntentStore{intents: map[string]Intent{}}
}

func (m *memoryIntentStore) Stage(ctx context.Context, visitorID string, intent Intent) error {
	m.intents[visitorID] = intent
	return nil
}

func (m *memoryIntentStore) Consume(ctx context.Context, visitorID string) (*Intent, error) {
	intent, ok := m.intents[visitorID]
	if !ok {
		return nil, nil
	}
	delete(m.intents, visitorID)
	return &intent, nil
}

type stubEventsService struct {
	events.Service
	createWithGifts func(ctx context.Context, callerID uuid.UUID, input events.CreateEventInput, drafts []events.DraftGift) (*events.CreateEventResult, error)
}

func (s *stubEventsService) CreateWithGifts(ctx context.Context, callerID uuid.UUID, input events.CreateEventInput, drafts []events.DraftGift) (*events.CreateEventResult, error) {
	return s.createWithGifts(ctx, callerID, input, drafts)
}

type giftServiceAdapter struct {
	gifts.Service
	reserve func(ctx context.Context, giftID, callerID uuid.UUID) error
}

func (g *giftServiceAdapter) Reserve(ctx context.Context, giftID, callerID uuid.UUID) error {
	return g.reserve(ctx, giftID, callerID)
}

func newTestService(t *testing.T, store IntentStore, eventsSvc events.Service, reserve func(ctx context.Context, giftID, callerID uuid.UUID) error) Service {
	t.Helper()

	if eventsSvc == nil {
		eventsSvc = &stubEventsService{
			createWithGifts: func(context.Context, uuid.UUID, events.CreateEventInput, []events.DraftGift) (*events.CreateEventResult, error) {
				t.Fatal("unexpected CreateWithGifts call")
				return nil, nil
			},
		}
	}
	if reserve == nil {
		reserve = func(context.Context, uuid.UUID, uuid.UUID) error {
			t.Fatal("unexpected Reserve call")
			return nil
		}
	}
	svc, err := NewService(store, eventsSvc, &giftServiceAdapter{reserve: reserve}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestStageValidatesIntentShape(t *testing.T) {
	store := newMemoryIntentStore()
	svc := newTestService(t, store, nil, nil)
	ctx := context.Background()

	giftID := uuid.New()
	cases := []struct {
		name    string
		visitor string
		intent  Intent
	}{
		{name: "empty visitor", visitor: " ", intent: Intent{Kind: KindReserveGift, GiftID: &giftID}},
		{name: "unknown kind", visitor: "v1", intent: Intent{Kind: Kind("snooze")}},
		{name: "reserve without gift", visitor: "v1", intent: Intent{Kind: KindReserveGift}},
		{name: "publish without draft", visitor: "v1", intent: Intent{Kind: KindPublishDraft}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Stage(ctx, tc.visitor, tc.intent)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
	if len(store.intents) != 0 {
		t.Fatalf("invalid intents must not be staged, got %v", store.intents)
	}
}

func TestResumeReplaysReservationOnce(t *testing.T) {
	store := newMemoryIntentStore()
	giftID := uuid.New()
	callerID := uuid.New()

	reserved := 0
	svc := newTestService(t, store, nil, func(ctx context.Context, gotGift, gotCaller uuid.UUID) error {
		reserved++
		if gotGift != giftID || gotCaller != callerID {
			t.Fatalf("unexpected reserve args %s %s", gotGift, gotCaller)
		}
		return nil
	})
	ctx := context.Background()

	if err := svc.Stage(ctx, "visitor-1", Intent{Kind: KindReserveGift, GiftID: &giftID}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	result, err := svc.Resume(ctx, "visitor-1", callerID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !result.Resumed || result.Kind != KindReserveGift {
		t.Fatalf("unexpected result %+v", result)
	}
	if reserved != 1 {
		t.Fatalf("expected one reservation, got %d", reserved)
	}

	// Second return finds nothing: the marker was consumed.
	result, err = svc.Resume(ctx, "visitor-1", callerID)
	if err != nil {
		t.Fatalf("second resume: %v", err)
	}
	if result.Resumed {
		t.Fatal("expected nothing to resume on replay")
	}
	if reserved != 1 {
		t.Fatalf("duplicate execution: reserve called %d times", reserved)
	}
}

func TestResumeClearsMarkerEvenWhenExecutionFails(t *testing.T) {
	store := newMemoryIntentStore()
	giftID := uuid.New()

	svc := newTestService(t, store, nil, func(context.Context, uuid.UUID, uuid.UUID) error {
		return pkgerrors.New(pkgerrors.CodeAlreadyClaimed, "gift already claimed")
	})
	ctx := context.Background()

	if err := svc.Stage(ctx, "visitor-1", Intent{Kind: KindReserveGift, GiftID: &giftID}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	_, err := svc.Resume(ctx, "visitor-1", uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyClaimed {
		t.Fatalf("expected execution failure surfaced, got %v", err)
	}

	// The marker must be gone so the failure does not loop.
	if len(store.intents) != 0 {
		t.Fatalf("expected marker cleared after failed replay, got %v", store.intents)
	}
	result, err := svc.Resume(ctx, "visitor-1", uuid.New())
	if err != nil {
		t.Fatalf("resume after failure: %v", err)
	}
	if result.Resumed {
		t.Fatal("failed replay must not restage the intent")
	}
}

func TestResumePublishesDraftWithGifts(t *testing.T) {
	store := newMemoryIntentStore()
	callerID := uuid.New()
	want := &events.CreateEventResult{EventID: uuid.New(), Slug: "ana-cha-de-panela-1234"}

	var gotDrafts []events.DraftGift
	eventsSvc := &stubEventsService{
		createWithGifts: func(ctx context.Context, gotCaller uuid.UUID, input events.CreateEventInput, drafts []events.DraftGift) (*events.CreateEventResult, error) {
			if gotCaller != callerID {
				t.Fatalf("unexpected caller %s", gotCaller)
			}
			if input.Name != "Chá de Panela" {
				t.Fatalf("unexpected draft name %q", input.Name)
			}
			gotDrafts = drafts
			return want, nil
		},
	}
	svc := newTestService(t, store, eventsSvc, nil)
	ctx := context.Background()

	draft := &Draft{
		Name:      "Chá de Panela",
		EventType: "cha_de_panela",
		Hosts:     []string{"Ana"},
		Gifts:     []events.DraftGift{{Name: "Jogo de Panelas"}, {Name: "Toalhas"}},
	}
	if err := svc.Stage(ctx, "visitor-2", Intent{Kind: KindPublishDraft, Draft: draft}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	result, err := svc.Resume(ctx, "visitor-2", callerID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !result.Resumed || result.Kind != KindPublishDraft {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Event == nil || result.Event.Slug != want.Slug {
		t.Fatalf("expected create result propagated, got %+v", result.Event)
	}
	if len(gotDrafts) != 2 {
		t.Fatalf("expected drafted gifts forwarded, got %d", len(gotDrafts))
	}
}

func TestResumeRequiresIdentity(t *testing.T) {
	svc := newTestService(t, newMemoryIntentStore(), nil, nil)

	_, err := svc.Resume(context.Background(), "visitor-1", uuid.Nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestResumeRejectsInvalidDraftType(t *testing.T) {
	store := newMemoryIntentStore()
	svc := newTestService(t, store, &stubEventsService{
		createWithGifts: func(context.Context, uuid.UUID, events.CreateEventInput, []events.DraftGift) (*events.CreateEventResult, error) {
			return nil, errors.New("must not be reached")
		},
	}, nil)
	ctx := context.Background()

	draft := &Draft{Name: "Festa", EventType: "bodas", Hosts: []string{"Ana"}}
	if err := svc.Stage(ctx, "visitor-3", Intent{Kind: KindPublishDraft, Draft: draft}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	_, err := svc.Resume(ctx, "visitor-3", uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for unknown drafted type, got %v", err)
	}
}
