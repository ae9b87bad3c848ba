package cache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	redis.Cmdable
	deleted []string
	err     error
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.deleted = append(f.deleted, keys...)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestRedisInvalidatorDeletesKeys(t *testing.T) {
	f := &fakeRedis{}
	inv := NewRedisInvalidator(f)

	if err := inv.Invalidate(context.Background(), "catalog:products", "catalog:product:4"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if strings.Join(f.deleted, ",") != "catalog:products,catalog:product:4" {
		t.Fatalf("deleted=%v", f.deleted)
	}
}

func TestRedisInvalidatorNoKeys(t *testing.T) {
	f := &fakeRedis{err: errors.New("must not be called")}
	if err := NewRedisInvalidator(f).Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}

func TestRedisInvalidatorWrapsError(t *testing.T) {
	down := errors.New("connection refused")
	f := &fakeRedis{err: down}

	err := NewRedisInvalidator(f).Invalidate(context.Background(), "k")
	if !errors.Is(err, down) {
		t.Fatalf("err=%v", err)
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect(context.Background(), "redis://:badport:x/"); err == nil {
		t.Fatalf("expected parse error")
	}
}
