package resetinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/reset"
)

func challengeKey(email string) string {
	return fmt.Sprintf("auth:verify:%s", email)
}

// RedisChallengeRepository implements reset.ChallengeRepository with one
// TTL-bounded string key per email. Expiry is left entirely to Redis.
type RedisChallengeRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisChallengeRepository(rdb *redis.Client, ttl time.Duration) *RedisChallengeRepository {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &RedisChallengeRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisChallengeRepository) Find(ctx context.Context, email string) (string, error) {
	code, err := r.rdb.Get(ctx, challengeKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", reset.ErrCodeNotFound().WithDetail("email", email)
		}
		return "", errx.Wrap(err, "failed to load verification code", errx.TypeInternal)
	}
	return code, nil
}

func (r *RedisChallengeRepository) Save(ctx context.Context, email, code string) error {
	if err := r.rdb.Set(ctx, challengeKey(email), code, r.ttl).Err(); err != nil {
		return errx.Wrap(err, "failed to store verification code", errx.TypeInternal).
			WithDetail("email", email)
	}
	return nil
}

func (r *RedisChallengeRepository) Delete(ctx context.Context, email string) error {
	if err := r.rdb.Del(ctx, challengeKey(email)).Err(); err != nil {
		return errx.Wrap(err, "failed to delete verification code", errx.TypeInternal).
			WithDetail("email", email)
	}
	return nil
}
