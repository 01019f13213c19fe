package redis

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"signflow/internal/domain/entity"
)

// fakeStore mirrors the generation scripts of RedisClient in memory
type fakeStore struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
	failGen error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return "", f.failGet
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeStore) SetIfGeneration(_ context.Context, genKey string, generation int64, key string, value interface{}, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.data[genKey]
	if !ok {
		current = "0"
	}
	if current != strconv.FormatInt(generation, 10) {
		return false, nil
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return true, nil
}

func (f *fakeStore) BumpGeneration(_ context.Context, genKey, key string, genExpiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGen != nil {
		return f.failGen
	}
	n, _ := strconv.ParseInt(f.data[genKey], 10, 64)
	f.data[genKey] = strconv.FormatInt(n+1, 10)
	f.ttls[genKey] = genExpiration
	delete(f.data, key)
	return nil
}

func inProgress(id string) *entity.RequestStatus {
	return &entity.RequestStatus{
		RequestID:  id,
		TenantID:   "tenant-a",
		State:      entity.RequestStateInProgress,
		Completion: entity.Completion{Total: 3, SignedCount: 1, Percentage: 33},
	}
}

func TestStatusCacheRoundTripAndInvalidate(t *testing.T) {
	store := newFakeStore()
	cache := newStatusCache(store, 30*time.Second, zap.NewNop())
	ctx := context.Background()

	_, gen, ok := cache.GetStatus(ctx, "req-1")
	if ok {
		t.Fatalf("expected miss on empty cache")
	}
	if gen != 0 {
		t.Fatalf("generation = %d, want 0 before any invalidation", gen)
	}

	cache.SetStatus(ctx, inProgress("req-1"), gen)
	if store.ttls[statusKeyPrefix+"req-1"] != 30*time.Second {
		t.Fatalf("expected ttl to be applied")
	}

	status, _, ok := cache.GetStatus(ctx, "req-1")
	if !ok {
		t.Fatalf("expected hit")
	}
	if status.TenantID != "tenant-a" || status.Completion.Percentage != 33 {
		t.Fatalf("unexpected cached status %+v", status)
	}

	cache.Invalidate(ctx, "req-1")
	_, gen, ok = cache.GetStatus(ctx, "req-1")
	if ok {
		t.Fatalf("expected miss after invalidate")
	}
	if gen != 1 {
		t.Fatalf("generation = %d, want 1 after invalidate", gen)
	}
	if store.ttls[generationKeyPrefix+"req-1"] != generationTTL {
		t.Errorf("generation key ttl = %v", store.ttls[generationKeyPrefix+"req-1"])
	}
}

func TestStatusCacheDropsSnapshotReadBeforeInvalidation(t *testing.T) {
	store := newFakeStore()
	cache := newStatusCache(store, time.Minute, zap.NewNop())
	ctx := context.Background()

	// reader misses and loads from the database
	_, gen, _ := cache.GetStatus(ctx, "req-1")

	// a signature commits and invalidates before the reader writes back
	cache.Invalidate(ctx, "req-1")

	cache.SetStatus(ctx, inProgress("req-1"), gen)
	if _, _, ok := cache.GetStatus(ctx, "req-1"); ok {
		t.Fatalf("snapshot taken before invalidation was cached")
	}

	_, gen, _ = cache.GetStatus(ctx, "req-1")
	cache.SetStatus(ctx, inProgress("req-1"), gen)
	if _, _, ok := cache.GetStatus(ctx, "req-1"); !ok {
		t.Fatalf("fresh snapshot was not cached")
	}
}

func TestStatusCacheTreatsErrorsAsMiss(t *testing.T) {
	store := newFakeStore()
	store.data[statusKeyPrefix+"req-1"] = "{not json"
	cache := newStatusCache(store, time.Minute, zap.NewNop())

	if _, _, ok := cache.GetStatus(context.Background(), "req-1"); ok {
		t.Fatalf("expected malformed entry to be a miss")
	}

	store.failGet = errors.New("connection refused")
	_, gen, ok := cache.GetStatus(context.Background(), "req-2")
	if ok {
		t.Fatalf("expected read failure to be a miss")
	}
	if gen >= 0 {
		t.Fatalf("generation = %d, want negative when unreadable", gen)
	}

	store.failGet = nil
	cache.SetStatus(context.Background(), inProgress("req-2"), gen)
	if _, ok := store.data[statusKeyPrefix+"req-2"]; ok {
		t.Fatalf("status cached without a known generation")
	}
}

func TestStatusCacheIgnoresCorruptGeneration(t *testing.T) {
	store := newFakeStore()
	store.data[generationKeyPrefix+"req-1"] = "garbage"
	cache := newStatusCache(store, time.Minute, zap.NewNop())

	if _, gen, _ := cache.GetStatus(context.Background(), "req-1"); gen >= 0 {
		t.Fatalf("generation = %d, want negative", gen)
	}
}

func TestStatusCacheDisabledWithZeroTTL(t *testing.T) {
	store := newFakeStore()
	cache := newStatusCache(store, 0, zap.NewNop())

	cache.SetStatus(context.Background(), &entity.RequestStatus{RequestID: "req-1"}, 0)
	if len(store.data) != 0 {
		t.Fatalf("expected nothing to be written")
	}
}
