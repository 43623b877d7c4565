package middleware

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failFirstExpire makes the first EXPIRE sent by the client fail.
type failFirstExpire struct {
	failed atomic.Bool
}

func (h *failFirstExpire) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *failFirstExpire) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "expire" && h.failed.CompareAndSwap(false, true) {
			err := errors.New("i/o timeout")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (h *failFirstExpire) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func newRedisCounter(t *testing.T, hooks ...redis.Hook) (*RedisCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	for _, h := range hooks {
		client.AddHook(h)
	}
	return NewRedisCounter(client), mr
}

func TestRedisCounterWindow(t *testing.T) {
	counter, mr := newRedisCounter(t)
	ctx := context.Background()

	count, ttl, err := counter.Hit(ctx, "ratelimit:test", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Hour, ttl)

	count, ttl, err = counter.Hit(ctx, "ratelimit:test", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.True(t, ttl > 0 && ttl <= time.Hour, "ttl %v", ttl)

	mr.FastForward(time.Hour + time.Second)

	count, _, err = counter.Hit(ctx, "ratelimit:test", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "window restarts once the key expires")
}

func TestRedisCounterRecoversFromFailedExpire(t *testing.T) {
	counter, mr := newRedisCounter(t, &failFirstExpire{})
	ctx := context.Background()

	_, _, err := counter.Hit(ctx, "ratelimit:test", time.Hour)
	require.Error(t, err)
	assert.Zero(t, mr.TTL("ratelimit:test"), "key was left without a ttl")

	count, ttl, err := counter.Hit(ctx, "ratelimit:test", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, time.Hour, ttl)
	assert.Equal(t, time.Hour, mr.TTL("ratelimit:test"))

	mr.FastForward(time.Hour + time.Second)

	count, _, err = counter.Hit(ctx, "ratelimit:test", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
