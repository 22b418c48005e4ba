package redis

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/futamarket/market-backend/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrWithTTLSetsExpiryOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	count, err := client.IncrWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = client.IncrWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.Len(t, mock.expireCalls, 1)
	assert.Equal(t, time.Minute, mock.expireCalls[0].ttl)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	n, err := client.Count(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = client.IncrWithTTL(ctx, "hits", 0)
	require.NoError(t, err)
	_, err = client.IncrWithTTL(ctx, "hits", 0)
	require.NoError(t, err)

	n, err = client.Count(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, client.Del(ctx, "hits"))
	n, err = client.Count(ctx, "hits")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCountPropagatesErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.getErr = errors.New("connection refused")
	client := &Client{store: mock}

	_, err := client.Count(context.Background(), "k")
	assert.EqualError(t, err, "connection refused")
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	ctx := context.Background()

	assert.ErrorIs(t, client.Ping(ctx), errNotInitialized)
	_, err := client.Count(ctx, "k")
	assert.ErrorIs(t, err, errNotInitialized)
	assert.NoError(t, client.Close())
}

func TestAdminFailureKey(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "fm:admin_failures:10.0.0.1", client.AdminFailureKey("10.0.0.1"))
	assert.Equal(t, "fm:admin_failures", client.AdminFailureKey(" "))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@cache:6380/2", PoolSize: 7})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, time.Second, opts.DialTimeout)
}

type mockCmdable struct {
	incr        map[string]int64
	expireCalls []expireCall
	getErr      error
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{incr: make(map[string]int64)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.incr[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(strconv.FormatInt(v, 10), nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.incr, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
