package intents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andrelucena/celebra-backend/internal/events"
	"github.com/andrelucena/celebra-backend/internal/gifts"
	"github.com/andrelucena/celebra-backend/pkg/enums"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	"github.com/andrelucena/celebra-backend/pkg/logger"
)

// IntentStore is the durable pending-intent slot, one per visitor.
type IntentStore interface {
	Stage(ctx context.Context, visitorID string, intent Intent) error
	Consume(ctx context.Context, visitorID string) (*Intent, error)
}

// ResumeResult reports what, if anything, was replayed after login.
type ResumeResult struct {
	Resumed bool                      `json:"resumed"`
	Kind    Kind                      `json:"kind,omitempty"`
	GiftID  *uuid.UUID                `json:"gift_id,omitempty"`
	Event   *events.CreateEventResult `json:"event,omitempty"`
}

// Service stages pending intents for anonymous visitors and replays them
// once the visitor returns authenticated.
type Service interface {
	Stage(ctx context.Context, visitorID string, intent Intent) error
	Resume(ctx context.Context, visitorID string, callerID uuid.UUID) (*ResumeResult, error)
}

type service struct {
	store  IntentStore
	events events.Service
	gifts  gifts.Service
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the deferred-action coordinator.
func NewService(store IntentStore, eventsSvc events.Service, giftsSvc gifts.Service, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "intent store required")
	}
	if eventsSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "events service required")
	}
	if giftsSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gifts service required")
	}
	return &service{
		store:  store,
		events: eventsSvc,
		gifts:  giftsSvc,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func (s *service) Stage(ctx context.Context, visitorID string, intent Intent) error {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "visitor id is required")
	}
	if !intent.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown intent kind")
	}
	if intent.Kind == KindReserveGift && (intent.GiftID == nil || *intent.GiftID == uuid.Nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "reserve intent requires a gift id")
	}
	if intent.Kind == KindPublishDraft && intent.Draft == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "publish intent requires a draft")
	}

	intent.StagedAt = s.now().UTC()
	return s.store.Stage(ctx, visitorID, intent)
}

// Resume consumes the visitor's pending intent and executes it with the
// caller's identity. The marker is cleared before execution, so a failed
// replay does not loop: the next login return finds nothing to resume.
func (s *service) Resume(ctx context.Context, visitorID string, callerID uuid.UUID) (*ResumeResult, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "visitor id is required")
	}

	intent, err := s.store.Consume(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		return &ResumeResult{Resumed: false}, nil
	}

	switch intent.Kind {
	case KindReserveGift:
		if intent.GiftID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "reserve intent without gift id")
		}
		if err := s.gifts.Reserve(ctx, *intent.GiftID, callerID); err != nil {
			return nil, err
		}
		return &ResumeResult{Resumed: true, Kind: KindReserveGift, GiftID: intent.GiftID}, nil

	case KindPublishDraft:
		if intent.Draft == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "publish intent without draft")
		}
		input, err := draftToInput(*intent.Draft)
		if err != nil {
			return nil, err
		}
		result, err := s.events.CreateWithGifts(ctx, callerID, input, intent.Draft.Gifts)
		if err != nil {
			return nil, err
		}
		return &ResumeResult{Resumed: true, Kind: KindPublishDraft, Event: result}, nil

	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "unknown staged intent kind")
	}
}

func draftToInput(draft Draft) (events.CreateEventInput, error) {
	eventType, err := enums.ParseEventType(draft.EventType)
	if err != nil {
		return events.CreateEventInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "drafted event type")
	}

	var partner *enums.Partner
	if draft.CreatedByPartner != nil {
		parsed, err := enums.ParsePartner(*draft.CreatedByPartner)
		if err != nil {
			return events.CreateEventInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "drafted partner")
		}
		partner = &parsed
	}

	return events.CreateEventInput{
		Name:             draft.Name,
		EventType:        eventType,
		CustomEventType:  draft.CustomEventType,
		Hosts:            draft.Hosts,
		IsPublic:         draft.IsPublic,
		CreatedByPartner: partner,
		Date:             draft.Date,
		Location:         draft.Location,
		Description:      draft.Description,
		CoverImageRef:    draft.CoverImageRef,
	}, nil
}
