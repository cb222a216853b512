package resetinfra_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dpang/auth-server/pkg/reset"
	"github.com/dpang/auth-server/pkg/reset/resetinfra"
)

func newTestRepo(t *testing.T) (*resetinfra.RedisChallengeRepository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return resetinfra.NewRedisChallengeRepository(rdb, 5*time.Minute), mr
}

func TestRedisChallengeRepository_SaveAndFind(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Find(ctx, "a@b.com"); !errors.Is(err, reset.ErrCodeNotFound()) {
		t.Fatalf("expected ErrCodeNotFound before save, got %v", err)
	}

	if err := repo.Save(ctx, "a@b.com", "0042"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	code, err := repo.Find(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if code != "0042" {
		t.Errorf("code = %q, want 0042", code)
	}

	// A new request overwrites the pending code.
	if err := repo.Save(ctx, "a@b.com", "7777"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	code, _ = repo.Find(ctx, "a@b.com")
	if code != "7777" {
		t.Errorf("code after overwrite = %q, want 7777", code)
	}
}

func TestRedisChallengeRepository_Expires(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "a@b.com", "1234"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ttl := mr.TTL("auth:verify:a@b.com")
	if ttl <= 0 || ttl > 5*time.Minute {
		t.Errorf("challenge ttl = %v, want (0, 5m]", ttl)
	}

	mr.FastForward(6 * time.Minute)
	if _, err := repo.Find(ctx, "a@b.com"); !errors.Is(err, reset.ErrCodeNotFound()) {
		t.Fatalf("expected challenge to expire, got %v", err)
	}
}

func TestRedisChallengeRepository_Delete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "a@b.com", "1234"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Delete(ctx, "a@b.com"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Find(ctx, "a@b.com"); !errors.Is(err, reset.ErrCodeNotFound()) {
		t.Fatalf("expected ErrCodeNotFound after delete, got %v", err)
	}

	// Deleting an absent challenge is a no-op.
	if err := repo.Delete(ctx, "a@b.com"); err != nil {
		t.Fatalf("double delete failed: %v", err)
	}
}
