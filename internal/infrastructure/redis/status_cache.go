package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"signflow/internal/config"
	"signflow/internal/domain/entity"
)

const (
	statusKeyPrefix     = "request_status:"
	generationKeyPrefix = "request_status_gen:"

	// generationTTL outlives any status entry so a bump is never forgotten
	// while a reader that saw the previous generation can still write.
	generationTTL = 24 * time.Hour
)

// KeyValueStore is the subset of RedisClient used by the status cache
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetIfGeneration(ctx context.Context, genKey string, generation int64, key string, value interface{}, expiration time.Duration) (bool, error)
	BumpGeneration(ctx context.Context, genKey, key string, genExpiration time.Duration) error
}

// StatusCache keeps short-lived request status projections.
// Every method is best effort: failures are logged and treated as a miss.
//
// Each request carries a generation counter that Invalidate bumps. A reader
// takes the generation before loading from the database and SetStatus only
// writes while the counter is unchanged, so a snapshot read before a commit
// can never land after that commit's invalidation.
type StatusCache struct {
	store  KeyValueStore
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatusCache(cfg *config.Config, client *RedisClient, logger *zap.Logger) *StatusCache {
	return newStatusCache(client, cfg.Redis.StatusTTL, logger)
}

func newStatusCache(store KeyValueStore, ttl time.Duration, logger *zap.Logger) *StatusCache {
	return &StatusCache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// GetStatus returns the cached status when present, plus the generation to
// hand back to SetStatus on a miss. A negative generation means the counter
// could not be read and the caller must not cache.
func (c *StatusCache) GetStatus(ctx context.Context, requestID string) (*entity.RequestStatus, int64, bool) {
	if c.ttl <= 0 {
		return nil, -1, false
	}

	generation := c.generation(ctx, requestID)

	cached, err := c.store.Get(ctx, statusKeyPrefix+requestID)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read status cache",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		}
		return nil, generation, false
	}

	var status entity.RequestStatus
	if err := json.Unmarshal([]byte(cached), &status); err != nil {
		c.logger.Warn("Discarding malformed status cache entry",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, generation, false
	}
	return &status, generation, true
}

func (c *StatusCache) generation(ctx context.Context, requestID string) int64 {
	raw, err := c.store.Get(ctx, generationKeyPrefix+requestID)
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		c.logger.Warn("Failed to read status cache generation",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return -1
	}

	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || generation < 0 {
		return -1
	}
	return generation
}

// SetStatus caches status if no invalidation happened since generation was read
func (c *StatusCache) SetStatus(ctx context.Context, status *entity.RequestStatus, generation int64) {
	if c.ttl <= 0 || status == nil || generation < 0 {
		return
	}

	payload, err := json.Marshal(status)
	if err != nil {
		c.logger.Warn("Failed to encode status for cache", zap.Error(err))
		return
	}

	written, err := c.store.SetIfGeneration(ctx,
		generationKeyPrefix+status.RequestID, generation,
		statusKeyPrefix+status.RequestID, payload, c.ttl,
	)
	if err != nil {
		c.logger.Warn("Failed to write status cache",
			zap.String("request_id", status.RequestID),
			zap.Error(err),
		)
		return
	}
	if !written {
		c.logger.Debug("Skipped caching superseded status",
			zap.String("request_id", status.RequestID),
			zap.Int64("generation", generation),
		)
	}
}

func (c *StatusCache) Invalidate(ctx context.Context, requestID string) {
	err := c.store.BumpGeneration(ctx,
		generationKeyPrefix+requestID, statusKeyPrefix+requestID, generationTTL,
	)
	if err != nil {
		c.logger.Warn("Failed to invalidate status cache",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
}
