package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis implements the subset of redis.Cmdable used by Redis.
type fakeRedis struct {
	redis.Cmdable
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	switch v, ok := f.data[key]; {
	case f.failGet != nil:
		cmd.SetErr(f.failGet)
	case !ok:
		cmd.SetErr(redis.Nil)
	default:
		cmd.SetVal(v)
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedis_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := NewRedis(fake)

	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("Get on empty cache: ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if fake.ttls["k"] != time.Minute {
		t.Errorf("ttl = %v", fake.ttls["k"])
	}

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v, %v", got, ok, err)
	}

	if err := c.Delete(ctx, "k", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("key still present after Delete")
	}
}

func TestRedis_GetError(t *testing.T) {
	fake := newFakeRedis()
	fake.failGet = errors.New("connection refused")
	_, ok, err := NewRedis(fake).Get(context.Background(), "k")
	if ok || err == nil {
		t.Errorf("got ok=%v err=%v", ok, err)
	}
}

func TestRedis_DeleteNoKeys(t *testing.T) {
	if err := NewRedis(newFakeRedis()).Delete(context.Background()); err != nil {
		t.Errorf("Delete() = %v", err)
	}
}
