package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"signflow/internal/config"
)

type RedisClient struct {
	Client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisClient(cfg *config.Config, logger *zap.Logger) (*RedisClient, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected successfully",
		zap.String("addr", addr),
		zap.Int("db", cfg.Redis.DB),
	)

	return Wrap(client, cfg.Redis.KeyPrefix, logger), nil
}

// Wrap builds a RedisClient around an existing go-redis client
func Wrap(client *redis.Client, prefix string, logger *zap.Logger) *RedisClient {
	return &RedisClient{
		Client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (r *RedisClient) key(k string) string {
	return r.prefix + k
}

// Get returns redis.Nil when the key is missing
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.Client.Get(ctx, r.key(key)).Result()
}

// setIfGenerationScript writes KEYS[2] only while KEYS[1] still holds ARGV[1]
var setIfGenerationScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if (current or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// bumpGenerationScript advances KEYS[1] and drops KEYS[2] atomically
var bumpGenerationScript = redis.NewScript(`
redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[1])
redis.call('DEL', KEYS[2])
return 1
`)

// SetIfGeneration stores value under key unless genKey moved past generation.
// A missing genKey counts as generation 0.
func (r *RedisClient) SetIfGeneration(ctx context.Context, genKey string, generation int64, key string, value interface{}, expiration time.Duration) (bool, error) {
	written, err := setIfGenerationScript.Run(ctx, r.Client,
		[]string{r.key(genKey), r.key(key)},
		strconv.FormatInt(generation, 10), value, expiration.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return written == 1, nil
}

// BumpGeneration increments genKey and deletes key in one step
func (r *RedisClient) BumpGeneration(ctx context.Context, genKey, key string, genExpiration time.Duration) error {
	return bumpGenerationScript.Run(ctx, r.Client,
		[]string{r.key(genKey), r.key(key)},
		genExpiration.Milliseconds(),
	).Err()
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}
