package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	var got payload
	ok, err := c.Get(ctx, "missing", &got)
	if err != nil || ok {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "NABIL:daily:latest", payload{Name: "NABIL", Score: 65}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("nepse:NABIL:daily:latest") {
		t.Error("key not namespaced with default prefix")
	}

	ok, err = c.Get(ctx, "NABIL:daily:latest", &got)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Name != "NABIL" || got.Score != 65 {
		t.Errorf("got %+v", got)
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if err := c.Set(ctx, "k", payload{Name: "x"}, time.Minute); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	var got payload
	if ok, err := c.Get(ctx, "k", &got); err != nil || ok {
		t.Errorf("expired key: ok=%v err=%v", ok, err)
	}
}

func TestRedisCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	for _, k := range []string{"NABIL:daily:latest", "NABIL:weekly:latest", "NTC:daily:latest"} {
		if err := c.Set(ctx, k, payload{Name: k}, time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	mr.Set("other:NABIL:daily:latest", "{}")

	if err := c.DeletePrefix(ctx, "NABIL:"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	var got payload
	for _, k := range []string{"NABIL:daily:latest", "NABIL:weekly:latest"} {
		if ok, _ := c.Get(ctx, k, &got); ok {
			t.Errorf("%s survived", k)
		}
	}
	if ok, _ := c.Get(ctx, "NTC:daily:latest", &got); !ok {
		t.Error("NTC entry deleted")
	}
	if !mr.Exists("other:NABIL:daily:latest") {
		t.Error("key outside the cache prefix deleted")
	}

	if err := c.DeletePrefix(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if ok, _ := c.Get(ctx, "NTC:daily:latest", &got); ok {
		t.Error("flush left entries behind")
	}
	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	if _, err := NewRedisCache(RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("expected ping error for closed server")
	}
}
