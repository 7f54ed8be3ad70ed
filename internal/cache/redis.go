package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"carrental-backend/internal/config"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

const (
	carsKey        = "cars"
	carsVersionKey = "cars:version"
	clientsKey     = "clients"
)

// Redis stores JSON-encoded snapshots under <prefix>:cars:<version> and
// <prefix>:clients. InvalidateCars increments <prefix>:cars:version, so a
// snapshot stored with an older version is never read again.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// NewRedisClient builds a client from cfg and pings it with a short timeout.
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return client, nil
}

func (r *Redis) key(name string) string {
	return r.prefix + ":" + name
}

func carsSnapshotKey(version int64) string {
	return carsKey + ":" + strconv.FormatInt(version, 10)
}

// carsVersion returns the current snapshot version, 0 before the first
// invalidation. A negative version means the cache is unusable.
func (r *Redis) carsVersion(ctx context.Context) int64 {
	v, err := r.client.Get(ctx, r.key(carsVersionKey)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		logger.WarnContext(ctx, "Listing cache version read failed", "key", r.key(carsVersionKey), "error", err)
		return -1
	}
	return v
}

func (r *Redis) Cars(ctx context.Context) ([]domain.Car, int64, bool) {
	version := r.carsVersion(ctx)
	if version < 0 {
		return nil, version, false
	}
	var cars []domain.Car
	if !r.get(ctx, carsSnapshotKey(version), &cars) {
		return nil, version, false
	}
	return cars, version, true
}

func (r *Redis) StoreCars(ctx context.Context, version int64, cars []domain.Car) {
	if version < 0 {
		return
	}
	r.set(ctx, carsSnapshotKey(version), cars)
}

func (r *Redis) Clients(ctx context.Context) ([]domain.Client, bool) {
	var clients []domain.Client
	if !r.get(ctx, clientsKey, &clients) {
		return nil, false
	}
	return clients, true
}

func (r *Redis) StoreClients(ctx context.Context, clients []domain.Client) {
	r.set(ctx, clientsKey, clients)
}

func (r *Redis) InvalidateCars(ctx context.Context) {
	version, err := r.client.Incr(ctx, r.key(carsVersionKey)).Result()
	if err != nil {
		logger.WarnContext(ctx, "Failed to invalidate car snapshot", "error", err)
		return
	}
	// The previous snapshot is unreachable now; drop it instead of waiting for the TTL.
	if err := r.client.Del(ctx, r.key(carsSnapshotKey(version-1))).Err(); err != nil {
		logger.DebugContext(ctx, "Failed to delete old car snapshot", "error", err)
	}
}

func (r *Redis) get(ctx context.Context, name string, dst any) bool {
	raw, err := r.client.Get(ctx, r.key(name)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WarnContext(ctx, "Listing cache read failed", "key", r.key(name), "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.WarnContext(ctx, "Listing cache entry is corrupt", "key", r.key(name), "error", err)
		return false
	}
	return true
}

func (r *Redis) set(ctx context.Context, name string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.WarnContext(ctx, "Failed to encode listing snapshot", "key", r.key(name), "error", err)
		return
	}
	if err := r.client.Set(ctx, r.key(name), raw, r.ttl).Err(); err != nil {
		logger.WarnContext(ctx, "Listing cache write failed", "key", r.key(name), "error", err)
	}
}
