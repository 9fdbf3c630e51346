package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReleaseFunc gives a held lock back. It is safe to call after the TTL
// expired: a lock taken over by someone else is left alone.
type ReleaseFunc func(ctx context.Context) error

type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(redisAddr string) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client}, nil
}

// Lock takes key for ttl. A key held by someone else yields response.ErrLocked.
func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	const op = "lock.RedisLock.Lock"

	lockKey := fmt.Sprintf("lock:%s", key)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", op, key, response.ErrLocked)
	}

	return func(ctx context.Context) error {
		const op = "lock.RedisLock.Release"

		err := releaseScript.Run(ctx, r.client, []string{lockKey}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}, nil
}

func (r *RedisLock) Close() error {
	return r.client.Close()
}

// OwnerKey scopes a lock to everything that shares an agent's calendar.
func OwnerKey(owner string) string {
	return "owner:" + owner
}

// OpeningsKey scopes a lock to an agent's opening hours.
func OpeningsKey(owner string) string {
	return "openings:" + owner
}
