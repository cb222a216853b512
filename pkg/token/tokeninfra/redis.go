package tokeninfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/token"
)

// compareAndDeleteScript deletes the session entry only when it still holds
// the presented token. Running it as a single script is what guarantees that
// two concurrent refreshes with the same token cannot both win.
var compareAndDeleteScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func sessionKey(id kernel.UserID) string {
	return fmt.Sprintf("auth:refresh:%d", id.Int64())
}

// RedisSessionRepository implements token.SessionRepository with one
// TTL-bounded string key per user.
type RedisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	if ttl == 0 {
		ttl = 5 * 24 * time.Hour
	}
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepository) Find(ctx context.Context, id kernel.UserID) (string, error) {
	stored, err := r.rdb.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", token.ErrTokenNotFound().WithDetail("user_id", id.Int64())
		}
		return "", errx.Wrap(err, "failed to load session", errx.TypeInternal)
	}
	return stored, nil
}

// Replace deletes any prior entry before writing the new one, so the fresh
// TTL clock always belongs to the new logical session.
func (r *RedisSessionRepository) Replace(ctx context.Context, id kernel.UserID, refreshToken string) error {
	key := sessionKey(id)

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Set(ctx, key, refreshToken, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errx.Wrap(err, "failed to replace session", errx.TypeInternal).
			WithDetail("user_id", id.Int64())
	}
	return nil
}

func (r *RedisSessionRepository) CompareAndDelete(ctx context.Context, id kernel.UserID, presented string) (bool, error) {
	deleted, err := compareAndDeleteScript.Run(ctx, r.rdb, []string{sessionKey(id)}, presented).Int()
	if err != nil {
		return false, errx.Wrap(err, "failed to rotate session", errx.TypeInternal).
			WithDetail("user_id", id.Int64())
	}
	return deleted == 1, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id kernel.UserID) (bool, error) {
	deleted, err := r.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, errx.Wrap(err, "failed to delete session", errx.TypeInternal).
			WithDetail("user_id", id.Int64())
	}
	return deleted > 0, nil
}
