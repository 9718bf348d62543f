package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/order"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionStore(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	t.Run("保存并读取会话", func(t *testing.T) {
		err := store.SaveSession(ctx, 1, map[string]interface{}{"username": "reader"}, time.Hour)
		require.NoError(t, err)

		data, err := store.GetSession(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "reader", data["username"])
		assert.Equal(t, time.Hour, mr.TTL("session:1"))
	})

	t.Run("删除后会话不存在", func(t *testing.T) {
		require.NoError(t, store.DeleteSession(ctx, 1))
		_, err := store.GetSession(ctx, 1)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("黑名单过期后自动移除", func(t *testing.T) {
		require.NoError(t, store.AddToBlacklist(ctx, "jti-1", time.Minute))

		ok, err := store.IsInBlacklist(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, ok)

		mr.FastForward(2 * time.Minute)
		ok, err = store.IsInBlacklist(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Redis不可用时返回缓存错误", func(t *testing.T) {
		mr.SetError("boom")
		defer mr.SetError("")

		_, err := store.IsInBlacklist(ctx, "jti-2")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRedisError))
	})
}

func TestBookCache(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewBookCache(client, 10*time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	b := &book.Book{
		ID:              1,
		Title:           "Кобзар",
		AuthorID:        2,
		Genre:           "Poetry",
		PublicationDate: time.Date(1840, 4, 18, 0, 0, 0, 0, time.UTC),
		Price:           25000,
		Quantity:        3,
	}
	require.NoError(t, cache.Set(ctx, b))
	assert.Equal(t, 10*time.Minute, mr.TTL("book:1"))

	got, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.Title, got.Title)
	assert.Equal(t, b.Quantity, got.Quantity)
	assert.True(t, b.PublicationDate.Equal(got.PublicationDate))

	t.Run("损坏的缓存按未命中处理", func(t *testing.T) {
		require.NoError(t, mr.Set("book:9", "{not json"))
		_, ok, err := cache.Get(ctx, 9)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	require.NoError(t, cache.Delete(ctx, 1, 9))
	assert.False(t, mr.Exists("book:1"))
	assert.NoError(t, cache.Delete(ctx))
}

func TestCallbackLog(t *testing.T) {
	mr, client := newTestClient(t)
	cbLog := NewCallbackLog(client, 24*time.Hour)
	ctx := context.Background()

	key := order.CallbackKey("inv-1", order.StatusSuccess, "2024-01-01T00:00:00Z")

	_, ok, err := cbLog.Lookup(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cbLog.Record(ctx, key, order.StatusSuccess))

	status, ok, err := cbLog.Lookup(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, order.StatusSuccess, status)
	assert.Equal(t, 24*time.Hour, mr.TTL("callback:"+key))
}
