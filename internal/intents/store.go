package intents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/andrelucena/celebra-backend/pkg/config"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	redisclient "github.com/andrelucena/celebra-backend/pkg/redis"
)

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
}

type keyBuilder interface {
	IntentKey(visitorID string) string
}

// Store holds one pending intent per visitor in redis, bounded by a TTL so
// abandoned markers expire on their own.
type Store struct {
	kv    kvStore
	keyer keyBuilder
	ttl   time.Duration
}

// NewStore wires the redis-backed intent store.
func NewStore(client *redisclient.Client, cfg config.IntentsConfig) (*Store, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redis client required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{kv: client, keyer: client, ttl: ttl}, nil
}

// Stage persists the visitor's pending intent, replacing any prior one.
func (s *Store) Stage(ctx context.Context, visitorID string, intent Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode intent")
	}
	if err := s.kv.Set(ctx, s.keyer.IntentKey(visitorID), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store intent")
	}
	return nil
}

// Consume atomically reads and clears the visitor's pending intent. The
// clear happens in the same redis command as the read, so replay after a
// failed execution is bounded to the one attempt.
func (s *Store) Consume(ctx context.Context, visitorID string) (*Intent, error) {
	raw, err := s.kv.GetDel(ctx, s.keyer.IntentKey(visitorID))
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume intent")
	}

	var intent Intent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode intent")
	}
	return &intent, nil
}
