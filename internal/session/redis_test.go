package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewManager(NewRedisBackend(rdb), ttl), mr
}

func TestRedisBackendLifecycle(t *testing.T) {
	ctx := context.Background()
	m, mr := newRedisManager(t, time.Hour)

	token, err := m.Create(ctx, testUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	key := redisKeyPrefix + token
	if !mr.Exists(key) {
		t.Fatalf("key %s not written", key)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Hour {
		t.Errorf("ttl = %v", ttl)
	}

	user, ok, err := m.Resolve(ctx, token)
	if err != nil || !ok || user != testUser {
		t.Fatalf("Resolve = %+v, %v, %v", user, ok, err)
	}

	if err := m.Revoke(ctx, token); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(key) {
		t.Error("key survived Revoke")
	}
}

func TestRedisBackendSlidingExpiry(t *testing.T) {
	ctx := context.Background()
	m, mr := newRedisManager(t, time.Hour)
	token, _ := m.Create(ctx, testUser)

	mr.FastForward(50 * time.Minute)
	if _, ok, _ := m.Resolve(ctx, token); !ok {
		t.Fatal("session expired early")
	}
	mr.FastForward(50 * time.Minute)
	if _, ok, _ := m.Resolve(ctx, token); !ok {
		t.Fatal("resolve did not extend the session")
	}
	mr.FastForward(61 * time.Minute)
	if _, ok, _ := m.Resolve(ctx, token); ok {
		t.Error("idle session must expire")
	}
}

func TestRedisBackendRefreshAndCorruptEntry(t *testing.T) {
	ctx := context.Background()
	m, mr := newRedisManager(t, time.Hour)
	token, _ := m.Create(ctx, testUser)

	updated := testUser
	updated.Email = "admin@example.com"
	if err := m.Refresh(ctx, token, updated); err != nil {
		t.Fatal(err)
	}
	user, _, _ := m.Resolve(ctx, token)
	if user.Email != "admin@example.com" {
		t.Errorf("email = %q", user.Email)
	}

	if err := m.Refresh(ctx, "missing", updated); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(redisKeyPrefix + "missing") {
		t.Error("Refresh created a session")
	}

	if err := mr.Set(redisKeyPrefix+"bad", "not json"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := m.Resolve(ctx, "bad"); ok || err != nil {
		t.Errorf("corrupt entry resolved: ok=%v err=%v", ok, err)
	}
	if mr.Exists(redisKeyPrefix + "bad") {
		t.Error("corrupt entry not dropped")
	}
}
