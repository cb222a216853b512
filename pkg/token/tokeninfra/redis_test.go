package tokeninfra_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/token"
	"github.com/dpang/auth-server/pkg/token/tokeninfra"
)

func newTestRepo(t *testing.T) (*tokeninfra.RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return tokeninfra.NewRedisSessionRepository(rdb, time.Hour), mr
}

func TestRedisSessionRepository_ReplaceAndFind(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	id := kernel.NewUserID(7)

	if _, err := repo.Find(ctx, id); !errors.Is(err, token.ErrTokenNotFound()) {
		t.Fatalf("expected ErrTokenNotFound before any session, got %v", err)
	}

	if err := repo.Replace(ctx, id, "refresh-1"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	stored, err := repo.Find(ctx, id)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored != "refresh-1" {
		t.Errorf("stored = %q, want refresh-1", stored)
	}

	// A second replace overwrites; only the newest token survives.
	if err := repo.Replace(ctx, id, "refresh-2"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	stored, _ = repo.Find(ctx, id)
	if stored != "refresh-2" {
		t.Errorf("stored after replace = %q, want refresh-2", stored)
	}
}

func TestRedisSessionRepository_ReplaceSetsTTL(t *testing.T) {
	repo, mr := newTestRepo(t)
	id := kernel.NewUserID(7)

	if err := repo.Replace(context.Background(), id, "refresh-1"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	ttl := mr.TTL("auth:refresh:7")
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("session ttl = %v, want (0, 1h]", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := repo.Find(context.Background(), id); !errors.Is(err, token.ErrTokenNotFound()) {
		t.Fatalf("expected session to expire, got %v", err)
	}
}

func TestRedisSessionRepository_CompareAndDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	id := kernel.NewUserID(9)

	if err := repo.Replace(ctx, id, "the-token"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	ok, err := repo.CompareAndDelete(ctx, id, "some-other-token")
	if err != nil {
		t.Fatalf("compare-and-delete failed: %v", err)
	}
	if ok {
		t.Fatal("mismatched token must not delete the session")
	}
	if _, err := repo.Find(ctx, id); err != nil {
		t.Fatalf("session should survive a mismatched compare: %v", err)
	}

	ok, err = repo.CompareAndDelete(ctx, id, "the-token")
	if err != nil {
		t.Fatalf("compare-and-delete failed: %v", err)
	}
	if !ok {
		t.Fatal("matching token must delete the session")
	}

	// Second redemption of the same token loses.
	ok, err = repo.CompareAndDelete(ctx, id, "the-token")
	if err != nil {
		t.Fatalf("compare-and-delete failed: %v", err)
	}
	if ok {
		t.Fatal("a consumed session must not be deletable twice")
	}
}

func TestRedisSessionRepository_Delete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	id := kernel.NewUserID(3)

	deleted, err := repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted {
		t.Fatal("deleting an absent session must report false")
	}

	if err := repo.Replace(ctx, id, "refresh"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	deleted, err = repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("deleting a live session must report true")
	}
}
