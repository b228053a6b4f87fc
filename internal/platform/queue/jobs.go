package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Pop when no job arrived before the timeout.
var ErrEmpty = errors.New("queue: no job available")

// JobQueue is a FIFO of opaque job payloads.
type JobQueue interface {
	Push(ctx context.Context, payload string) error
	// Pop blocks up to timeout for the next payload.
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	// Requeue puts a payload back at the far end so other jobs run first.
	Requeue(ctx context.Context, payload string) error
}

// Locker hands out TTL-bounded exclusive locks identified by a token.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) (bool, error)
}

type RedisJobQueue struct {
	rdb  *redis.Client
	name string
}

var (
	_ JobQueue = (*RedisJobQueue)(nil)
	_ Locker   = (*RedisLocker)(nil)
)

func NewRedisJobQueue(rdb *redis.Client, name string) *RedisJobQueue {
	return &RedisJobQueue{rdb: rdb, name: name}
}

func (q *RedisJobQueue) Push(ctx context.Context, payload string) error {
	return q.rdb.LPush(ctx, q.name, payload).Err()
}

func (q *RedisJobQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrEmpty
		}
		return "", err
	}
	// BRPOP replies with [queueName, value].
	if len(res) < 2 || res[1] == "" {
		return "", ErrEmpty
	}
	return res[1], nil
}

func (q *RedisJobQueue) Requeue(ctx context.Context, payload string) error {
	return q.rdb.LPush(ctx, q.name, payload).Err()
}

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

type RedisLocker struct {
	rdb      *redis.Client
	newToken func() string
}

func NewRedisLocker(rdb *redis.Client, newToken func() string) *RedisLocker {
	return &RedisLocker{rdb: rdb, newToken: newToken}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := l.newToken()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) (bool, error) {
	deleted, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int64()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}
