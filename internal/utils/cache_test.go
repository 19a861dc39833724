package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*JSONCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewJSONCache(rdb, "test:", ttl), mr
}

func TestJSONCacheSetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	var miss cachedThing
	if found, err := c.Get(ctx, "a", &miss); err != nil || found {
		t.Fatalf("expected miss, found=%v err=%v", found, err)
	}
	if err := c.Set(ctx, "a", cachedThing{Name: "x", Count: 2}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:a") {
		t.Fatal("expected prefixed key in redis")
	}
	var got cachedThing
	if found, err := c.Get(ctx, "a", &got); err != nil || !found || got.Count != 2 {
		t.Fatalf("Get = %+v found=%v err=%v", got, found, err)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if found, _ := c.Get(ctx, "a", &got); found {
		t.Fatal("expected miss after delete")
	}
}

func TestJSONCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Second)
	if err := c.Set(ctx, "k", cachedThing{Name: "y"}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Second)
	var got cachedThing
	if found, _ := c.Get(ctx, "k", &got); found {
		t.Fatal("expected entry to expire")
	}
}

func TestJSONCacheDropsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	if err := mr.Set("test:bad", "{not json"); err != nil {
		t.Fatal(err)
	}
	var got cachedThing
	if found, err := c.Get(ctx, "bad", &got); found || err != nil {
		t.Fatalf("corrupt entry: found=%v err=%v", found, err)
	}
	if mr.Exists("test:bad") {
		t.Fatal("corrupt entry should be removed")
	}
}

func TestJSONCacheSetIfNewerKeepsHighestVersion(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	if ok, err := c.SetIfNewer(ctx, "doc", 2, cachedThing{Name: "v2"}); err != nil || !ok {
		t.Fatalf("first write: ok=%v err=%v", ok, err)
	}
	if ok, err := c.SetIfNewer(ctx, "doc", 1, cachedThing{Name: "v1"}); err != nil || ok {
		t.Fatalf("older write: ok=%v err=%v", ok, err)
	}
	var got cachedThing
	if found, _ := c.Get(ctx, "doc", &got); !found || got.Name != "v2" {
		t.Fatalf("Get = %+v found=%v, want v2", got, found)
	}

	// Dropping the value keeps the version, so a stale write still loses
	if err := c.Delete(ctx, "doc"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := c.SetIfNewer(ctx, "doc", 1, cachedThing{Name: "v1"}); ok {
		t.Error("stale write accepted after Delete")
	}
	if ok, _ := c.SetIfNewer(ctx, "doc", 2, cachedThing{Name: "v2 again"}); !ok {
		t.Error("same version rejected")
	}
	if ttl := mr.TTL("test:doc" + versionSuffix); ttl <= 0 || ttl > time.Minute {
		t.Errorf("version ttl = %v", ttl)
	}
}
