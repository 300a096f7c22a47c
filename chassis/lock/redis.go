package lock

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ctx = context.Background()

// Config ...
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RedisLock implementation, SETNX based.
type RedisLock struct {
	rdb *redis.Client
}

// InitRedisLock ...
func InitRedisLock(cfg Config) (*RedisLock, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisLock{rdb: rdb}, nil
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:dashboard:%s", key)
}

func doneKey(key string) string {
	return fmt.Sprintf("done:dashboard:%s", key)
}

// Acquire ...
func (l *RedisLock) Acquire(key string) (string, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, lockKey(key), token, LockExpire).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrBusy
	}
	return token, nil
}

// releaseScript deletes the lock key only while it still holds the
// caller's token. Running the compare and the delete as one script
// keeps a lock reclaimed between them from being deleted under its new
// holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Release drops the lock held under token. A lock reclaimed after TTL
// expiry belongs to a newer attempt and stays in place.
func (l *RedisLock) Release(key, token string) error {
	return releaseScript.Run(ctx, l.rdb, []string{lockKey(key)}, token).Err()
}

// MarkDone ...
func (l *RedisLock) MarkDone(key string) error {
	return l.rdb.Set(ctx, doneKey(key), "1", DoneExpire).Err()
}

// IsDone ...
func (l *RedisLock) IsDone(key string) (bool, error) {
	n, err := l.rdb.Exists(ctx, doneKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
