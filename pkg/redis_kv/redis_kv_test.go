package redis_kv

import (
	"context"
	"testing"

	"studio-go/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) *RedisKV {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKV(client, "test:")
}

func TestSetAndGet(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "ana@example.com", "selectedDate")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	item, err := kv.Set(ctx, "ana@example.com", "selectedDate", "05/03/2024", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.Version)

	item, err = kv.Set(ctx, "ana@example.com", "selectedDate", "06/03/2024", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Version)

	got, err := kv.Get(ctx, "ana@example.com", "selectedDate")
	require.NoError(t, err)
	assert.Equal(t, "06/03/2024", got.Value)
	assert.Equal(t, int64(2), got.Version)
}

func TestCompareAndSet(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	// 不存在的键不能带期望版本写入
	_, err := kv.Set(ctx, "ns", "unitPlannerData", "[]", 1)
	assert.ErrorIs(t, err, repository.ErrVersionMismatch)

	_, err = kv.Set(ctx, "ns", "unitPlannerData", "[]", 0)
	require.NoError(t, err)

	item, err := kv.Set(ctx, "ns", "unitPlannerData", `[{"_id":"u1"}]`, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Version)

	// 另一个页面仍持有旧版本
	_, err = kv.Set(ctx, "ns", "unitPlannerData", `[]`, 1)
	assert.ErrorIs(t, err, repository.ErrVersionMismatch)

	got, err := kv.Get(ctx, "ns", "unitPlannerData")
	require.NoError(t, err)
	assert.Equal(t, `[{"_id":"u1"}]`, got.Value)
}

func TestDeleteAndClear(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	for _, key := range []string{"email", "selectedDate", "chat:rubrica"} {
		_, err := kv.Set(ctx, "ana", key, "v", 0)
		require.NoError(t, err)
	}
	_, err := kv.Set(ctx, "otro", "email", "v", 0)
	require.NoError(t, err)

	require.NoError(t, kv.Delete(ctx, "ana", "email"))
	_, err = kv.Get(ctx, "ana", "email")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, kv.Clear(ctx, "ana"))
	_, err = kv.Get(ctx, "ana", "selectedDate")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	// 其他命名空间不受影响
	_, err = kv.Get(ctx, "otro", "email")
	assert.NoError(t, err)

	// 清空空命名空间不报错
	assert.NoError(t, kv.Clear(ctx, "vacio"))
}
