package session

import (
	"context"
	"testing"
	"time"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", errNotFound
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type prefixKeyer struct{}

func (prefixKeyer) SessionKey(accessID string) string {
	return "celebra:session:" + accessID
}

var errNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "redis: nil" }

func TestManagerRegisterRevokeCycle(t *testing.T) {
	t.Parallel()

	mgr := &Manager{store: newMemoryStore(), keyer: prefixKeyer{}, ttl: time.Minute}
	ctx := context.Background()

	if err := mgr.Register(ctx, "jti-1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	ok, err := mgr.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist after register")
	}

	if err := mgr.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	// The memory store's miss error is not redis.Nil, so HasSession surfaces it.
	if _, err := mgr.HasSession(ctx, "jti-1"); err == nil {
		t.Fatal("expected store miss to surface")
	}
}

func TestManagerRejectsEmptyAccessID(t *testing.T) {
	t.Parallel()

	mgr := &Manager{store: newMemoryStore(), keyer: prefixKeyer{}, ttl: time.Minute}
	if err := mgr.Register(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
	ok, err := mgr.HasSession(context.Background(), "")
	if err != nil || ok {
		t.Fatalf("blank access id should report no session, got ok=%v err=%v", ok, err)
	}
}
