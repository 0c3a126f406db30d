package lock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock is still held by someone else after
// the configured wait.
var ErrNotAcquired = errors.New("lock not acquired")

// Release must be called exactly once after a successful Acquire.
type Release func()

type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker is a single-instance Redis lock: SET NX PX to take it, a
// compare-and-delete script to give it back.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, prefix: prefix, ttl: ttl, wait: wait}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	lockKey := l.prefix + key
	token := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (bool, error) {
		ok, err := l.rdb.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return false, backoff.Permanent(fmt.Errorf("lock.Acquire %s: %w", lockKey, err))
		}
		if !ok {
			return false, ErrNotAcquired
		}
		return true, nil
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(l.wait))
	if err != nil {
		if errors.Is(err, ErrNotAcquired) {
			return nil, fmt.Errorf("%s: %w", lockKey, ErrNotAcquired)
		}
		return nil, err
	}

	return func() {
		// The request context may already be done; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		deleted, err := releaseScript.Run(releaseCtx, l.rdb, []string{lockKey}, token).Int64()
		if err != nil {
			log.Printf("ERROR: Failed to release lock %s: %v", lockKey, err)
		} else if deleted != 1 {
			log.Printf("WARN: Lock %s expired before release.", lockKey)
		}
	}, nil
}
