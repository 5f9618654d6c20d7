// Package lock provides the worker leadership lease. Only the holder of the
// lease runs indexing ticks, so several replicas can share one database.
package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Lease interface {
	// Acquire takes or renews the lease for owner. It reports whether owner
	// holds the lease after the call.
	Acquire(ctx context.Context, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, owner string) error
}

// NoopLease always grants the lease. Used when Redis is not configured; the
// row-level claim in the record store still prevents double processing.
type NoopLease struct{}

func (NoopLease) Acquire(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (NoopLease) Release(ctx context.Context, owner string) error {
	return nil
}

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLease struct {
	rdb *redis.Client
	key string
}

func NewRedisLease(rdb *redis.Client, key string) *RedisLease {
	return &RedisLease{rdb: rdb, key: key}
}

func (l *RedisLease) Acquire(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, owner, ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	renewed, err := renewScript.Run(ctx, l.rdb, []string{l.key}, owner, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return renewed == 1, nil
}

func (l *RedisLease) Release(ctx context.Context, owner string) error {
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, owner).Err()
}
