package events

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/andrelucena/celebra-backend/internal/gifts"
	"github.com/andrelucena/celebra-backend/internal/memberships"
	"github.com/andrelucena/celebra-backend/pkg/db"
	"github.com/andrelucena/celebra-backend/pkg/db/models"
	"github.com/andrelucena/celebra-backend/pkg/enums"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	"github.com/andrelucena/celebra-backend/pkg/logger"
)

const (
	maxHosts        = 5
	searchResultCap = 20
)

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// URLResolver maps a stored blob ref to a fetchable URL.
type URLResolver interface {
	ResolveURL(ref string) (string, bool)
}

// BlobReleaser deletes a stored blob.
type BlobReleaser interface {
	Release(ctx context.Context, ref string) error
}

// Service defines the event registry operations.
type Service interface {
	ListEventTypes() []EventTypeOption
	Create(ctx context.Context, callerID uuid.UUID, input CreateEventInput) (*CreateEventResult, error)
	CreateWithGifts(ctx context.Context, callerID uuid.UUID, input CreateEventInput, drafts []DraftGift) (*CreateEventResult, error)
	GetBySlug(ctx context.Context, slug string) (*EventView, error)
	Search(ctx context.Context, query string) ([]EventView, error)
	ListForUser(ctx context.Context, userID uuid.UUID) (*GroupedEvents, error)
	Update(ctx context.Context, callerID, eventID uuid.UUID, input UpdateEventInput) error
	Delete(ctx context.Context, callerID, eventID uuid.UUID) error
}

type service struct {
	tx       TxRunner
	repo     Repository
	members  memberships.Repository
	gifts    gifts.Repository
	resolver URLResolver
	blobs    BlobReleaser
	logg     *logger.Logger
}

var eventTypeCatalog = []EventTypeOption{
	{Value: enums.EventTypeChaDePanela.String(), Label: "Chá de Panela", SupportsPairNames: true},
	{Value: enums.EventTypeChaDeBebe.String(), Label: "Chá de Bebê"},
	{Value: enums.EventTypeCasamento.String(), Label: "Casamento", SupportsPairNames: true},
	{Value: enums.EventTypeAniversario.String(), Label: "Aniversário"},
	{Value: enums.EventTypeOther.String(), Label: "Outro"},
}

// NewService wires event registry dependencies.
func NewService(
	tx TxRunner,
	repo Repository,
	members memberships.Repository,
	giftsRepo gifts.Repository,
	resolver URLResolver,
	blobs BlobReleaser,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "events repository required")
	}
	if members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "memberships repository required")
	}
	if giftsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gifts repository required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		members:  members,
		gifts:    giftsRepo,
		resolver: resolver,
		blobs:    blobs,
		logg:     logg,
	}, nil
}

func (s *service) ListEventTypes() []EventTypeOption {
	catalog := make([]EventTypeOption, len(eventTypeCatalog))
	copy(catalog, eventTypeCatalog)
	return catalog
}

func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateEventInput) (*CreateEventResult, error) {
	return s.CreateWithGifts(ctx, callerID, input, nil)
}

// CreateWithGifts creates the event, the creator's host membership and any
// drafted gifts in a single transaction. Used both by plain creation and by
// deferred draft publishing.
func (s *service) CreateWithGifts(ctx context.Context, callerID uuid.UUID, input CreateEventInput, drafts []DraftGift) (*CreateEventResult, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event name is required")
	}
	hosts, err := normalizeHosts(input.Hosts)
	if err != nil {
		return nil, err
	}
	if !input.EventType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown event type")
	}
	customType := trimPtr(input.CustomEventType)
	if input.EventType == enums.EventTypeOther && customType == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom event type description is required for type other")
	}
	if input.CreatedByPartner != nil && !input.CreatedByPartner.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown partner value")
	}

	slug, err := GenerateSlug(ctx, s.repo, name, hosts)
	if err != nil {
		return nil, err
	}

	partnerOne, partnerTwo := derivePartnerNames(hosts)
	event := &models.Event{
		ID:               uuid.New(),
		Name:             name,
		Slug:             slug,
		EventType:        input.EventType,
		CustomEventType:  customType,
		Hosts:            pq.StringArray(hosts),
		IsPublic:         input.IsPublic,
		PartnerOneName:   partnerOne,
		PartnerTwoName:   partnerTwo,
		CreatedByUserID:  callerID,
		CreatedByPartner: input.CreatedByPartner,
		Date:             input.Date,
		Location:         trimPtr(input.Location),
		Description:      input.Description,
		CoverImageRef:    trimPtr(input.CoverImageRef),
	}
	membership := &models.Membership{
		ID:      uuid.New(),
		EventID: event.ID,
		UserID:  callerID,
		Role:    enums.MemberRoleHost,
	}

	giftRows := make([]models.Gift, 0, len(drafts))
	for _, draft := range drafts {
		giftName := strings.TrimSpace(draft.Name)
		if giftName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "drafted gift name is required")
		}
		giftRows = append(giftRows, models.Gift{
			ID:           uuid.New(),
			EventID:      event.ID,
			Name:         giftName,
			Description:  draft.Description,
			Category:     trimPtr(draft.Category),
			ReferenceURL: trimPtr(draft.ReferenceURL),
			ImageRef:     trimPtr(draft.ImageRef),
			Status:       enums.GiftStatusAvailable,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, event); err != nil {
			return err
		}
		if err := s.members.WithTx(tx).Create(ctx, membership); err != nil {
			return err
		}
		return s.gifts.WithTx(tx).CreateBatch(ctx, giftRows)
	})
	if err != nil {
		// A racing insert on the same base+suffix loses to the unique slug index.
		if db.IsUniqueViolation(err, "idx_events_slug") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeSlugGeneration, err, "slug taken between probe and insert")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}

	return &CreateEventResult{EventID: event.ID, Slug: slug}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*EventView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	event, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event by slug")
	}
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	view := s.view(*event)
	return &view, nil
}

// Search scans public events and matches the folded query against the
// concatenated text fields. Capped, unordered beyond store order.
func (s *service) Search(ctx context.Context, query string) ([]EventView, error) {
	rows, err := s.repo.ListPublic(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list public events")
	}

	needle := Fold(strings.TrimSpace(query))
	views := make([]EventView, 0, searchResultCap)
	for _, event := range rows {
		if needle != "" && !strings.Contains(searchHaystack(event), needle) {
			continue
		}
		views = append(views, s.view(event))
		if len(views) == searchResultCap {
			break
		}
	}
	return views, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) (*GroupedEvents, error) {
	grouped := &GroupedEvents{Hosting: []EventView{}, Attending: []EventView{}}
	if userID == uuid.Nil {
		return grouped, nil
	}

	rows, err := s.members.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list memberships")
	}
	if len(rows) == 0 {
		return grouped, nil
	}

	roleByEvent := make(map[uuid.UUID]enums.MemberRole, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, membership := range rows {
		roleByEvent[membership.EventID] = membership.Role
		ids = append(ids, membership.EventID)
	}

	eventRows, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}

	for _, event := range eventRows {
		view := s.view(event)
		if roleByEvent[event.ID] == enums.MemberRoleHost {
			grouped.Hosting = append(grouped.Hosting, view)
		} else {
			grouped.Attending = append(grouped.Attending, view)
		}
	}
	return grouped, nil
}

func (s *service) Update(ctx context.Context, callerID, eventID uuid.UUID, input UpdateEventInput) error {
	event, err := s.loadForHost(ctx, callerID, eventID)
	if err != nil {
		return err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "event name cannot be empty")
		}
		event.Name = name
	}

	if input.Hosts != nil {
		hosts, err := normalizeHosts(input.Hosts)
		if err != nil {
			return err
		}
		event.Hosts = pq.StringArray(hosts)
		event.PartnerOneName, event.PartnerTwoName = derivePartnerNames(hosts)
	}

	if input.EventType != nil {
		if !input.EventType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown event type")
		}
		event.EventType = *input.EventType
	}

	if input.CustomEventType.IsSet() {
		if value, ok := input.CustomEventType.Value(); ok {
			event.CustomEventType = trimPtr(&value)
		} else {
			event.CustomEventType = nil
		}
	}

	// The "other needs a description" rule is checked against the effective
	// post-patch state, not the incoming fields in isolation.
	if event.EventType == enums.EventTypeOther && event.CustomEventType == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "custom event type description is required for type other")
	}

	if input.IsPublic != nil {
		event.IsPublic = *input.IsPublic
	}
	if input.Date.IsSet() {
		if value, ok := input.Date.Value(); ok {
			event.Date = &value
		} else {
			event.Date = nil
		}
	}
	if input.Location.IsSet() {
		if value, ok := input.Location.Value(); ok {
			event.Location = trimPtr(&value)
		} else {
			event.Location = nil
		}
	}
	if input.Description.IsSet() {
		if value, ok := input.Description.Value(); ok {
			event.Description = &value
		} else {
			event.Description = nil
		}
	}

	var staleCover *string
	if input.CoverImage.IsSet() {
		previous := event.CoverImageRef
		if value, ok := input.CoverImage.Value(); ok {
			event.CoverImageRef = trimPtr(&value)
		} else {
			event.CoverImageRef = nil
		}
		if previous != nil && (event.CoverImageRef == nil || *event.CoverImageRef != *previous) {
			staleCover = previous
		}
	}

	if err := s.repo.Save(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
	}

	if staleCover != nil {
		s.releaseBlobs(ctx, []string{*staleCover})
	}
	return nil
}

func (s *service) Delete(ctx context.Context, callerID, eventID uuid.UUID) error {
	event, err := s.loadForHost(ctx, callerID, eventID)
	if err != nil {
		return err
	}

	giftRows, err := s.gifts.ListForEvent(ctx, eventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gifts for delete")
	}

	refs := make([]string, 0, len(giftRows)+1)
	for _, gift := range giftRows {
		if gift.ImageRef != nil && *gift.ImageRef != "" {
			refs = append(refs, *gift.ImageRef)
		}
	}
	if event.CoverImageRef != nil && *event.CoverImageRef != "" {
		refs = append(refs, *event.CoverImageRef)
	}
	s.releaseBlobs(ctx, refs)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.gifts.WithTx(tx).DeleteForEvent(ctx, eventID); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).DeleteConfigsForEvent(ctx, eventID); err != nil {
			return err
		}
		if err := s.members.WithTx(tx).DeleteForEvent(ctx, eventID); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Delete(ctx, eventID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event cascade")
	}
	return nil
}

func (s *service) loadForHost(ctx context.Context, callerID, eventID uuid.UUID) (*models.Event, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}

	role, err := s.members.RoleOf(ctx, eventID, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership role")
	}
	if role == nil || *role != enums.MemberRoleHost {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "host membership required")
	}
	return event, nil
}

// releaseBlobs best-effort deletes stored blobs, accumulating failures. A
// failed release never blocks the row mutation that triggered it.
func (s *service) releaseBlobs(ctx context.Context, refs []string) {
	if s.blobs == nil || len(refs) == 0 {
		return
	}

	var combined error
	for _, ref := range refs {
		if err := s.blobs.Release(ctx, ref); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	if combined != nil && s.logg != nil {
		ctx = s.logg.WithField(ctx, "error", combined.Error())
		s.logg.Warn(ctx, "failed to release one or more blobs")
	}
}

func (s *service) view(event models.Event) EventView {
	view := EventView{Event: event}
	if s.resolver != nil && event.CoverImageRef != nil {
		if url, ok := s.resolver.ResolveURL(*event.CoverImageRef); ok {
			view.CoverImageURL = &url
		}
	}
	return view
}

func normalizeHosts(hosts []string) ([]string, error) {
	cleaned := make([]string, 0, maxHosts)
	for _, host := range hosts {
		trimmed := strings.TrimSpace(host)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
		if len(cleaned) == maxHosts {
			break
		}
	}
	if len(cleaned) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one host name is required")
	}
	return cleaned, nil
}

func derivePartnerNames(hosts []string) (*string, *string) {
	var one, two *string
	if len(hosts) > 0 {
		one = &hosts[0]
	}
	if len(hosts) > 1 {
		two = &hosts[1]
	}
	return one, two
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

func searchHaystack(event models.Event) string {
	parts := []string{event.Name, event.Slug, event.EventType.String()}
	if event.CustomEventType != nil {
		parts = append(parts, *event.CustomEventType)
	}
	parts = append(parts, event.Hosts...)
	if event.Location != nil {
		parts = append(parts, *event.Location)
	}
	if event.Description != nil {
		parts = append(parts, *event.Description)
	}
	return Fold(strings.Join(parts, " "))
}
