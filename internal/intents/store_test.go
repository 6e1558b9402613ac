package intents

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type memoryKV struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryKV) GetDel(ctx context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	delete(m.values, key)
	return value, nil
}

type visitorKeyer struct{}

func (visitorKeyer) IntentKey(visitorID string) string {
	return "celebra:intent:" + visitorID
}

func newTestStore(kv *memoryKV) *Store {
	return &Store{kv: kv, keyer: visitorKeyer{}, ttl: time.Hour}
}

func TestStoreRoundTrip(t *testing.T) {
	kv := newMemoryKV()
	store := newTestStore(kv)
	ctx := context.Background()

	giftID := uuid.New()
	staged := Intent{Kind: KindReserveGift, GiftID: &giftID, StagedAt: time.Now().UTC()}
	if err := store.Stage(ctx, "visitor-1", staged); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if kv.ttls["celebra:intent:visitor-1"] != time.Hour {
		t.Fatalf("expected TTL applied, got %v", kv.ttls)
	}

	intent, err := store.Consume(ctx, "visitor-1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if intent == nil || intent.Kind != KindReserveGift || intent.GiftID == nil || *intent.GiftID != giftID {
		t.Fatalf("unexpected intent %+v", intent)
	}
}

func TestConsumeIsGetAndClear(t *testing.T) {
	kv := newMemoryKV()
	store := newTestStore(kv)
	ctx := context.Background()

	giftID := uuid.New()
	if err := store.Stage(ctx, "visitor-1", Intent{Kind: KindReserveGift, GiftID: &giftID}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	first, err := store.Consume(ctx, "visitor-1")
	if err != nil || first == nil {
		t.Fatalf("first consume: intent=%v err=%v", first, err)
	}
	second, err := store.Consume(ctx, "visitor-1")
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if second != nil {
		t.Fatalf("expected slot empty after consume, got %+v", second)
	}
}

func TestStagingReplacesPriorIntent(t *testing.T) {
	kv := newMemoryKV()
	store := newTestStore(kv)
	ctx := context.Background()

	firstGift := uuid.New()
	secondGift := uuid.New()
	if err := store.Stage(ctx, "visitor-1", Intent{Kind: KindReserveGift, GiftID: &firstGift}); err != nil {
		t.Fatalf("stage first: %v", err)
	}
	if err := store.Stage(ctx, "visitor-1", Intent{Kind: KindReserveGift, GiftID: &secondGift}); err != nil {
		t.Fatalf("stage second: %v", err)
	}

	intent, err := store.Consume(ctx, "visitor-1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if intent == nil || *intent.GiftID != secondGift {
		t.Fatalf("expected latest intent to win, got %+v", intent)
	}
}
