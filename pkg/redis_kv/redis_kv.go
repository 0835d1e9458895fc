package redis_kv

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"studio-go/internal/repository"

	"github.com/go-redis/redis/v8"
)

// 比较并交换写入
// 脚本逻辑：
// 1. 读取当前版本，不存在视为0
// 2. 期望版本大于0且与当前版本不一致时返回-1
// 3. 否则写入新值、版本加1，并把key登记到命名空间索引
var setScript = redis.NewScript(
	`local cur = redis.call('HGET', KEYS[1], 'version')
	local expected = tonumber(ARGV[2])
	if cur == false then
		if expected > 0 then
			return -1
		end
		cur = 0
	else
		cur = tonumber(cur)
		if expected > 0 and cur ~= expected then
			return -1
		end
	end

	local v = cur + 1
	redis.call('HSET', KEYS[1], 'value', ARGV[1], 'version', v, 'updated_at', ARGV[3])
	redis.call('SADD', KEYS[2], KEYS[1])
	return v`,
)

var clearScript = redis.NewScript(
	`local keys = redis.call('SMEMBERS', KEYS[1])
	for i = 1, #keys do
		redis.call('DEL', keys[i])
	end
	redis.call('DEL', KEYS[1])
	return #keys`,
)

// RedisKV 基于Redis的键值存储
type RedisKV struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisKV 创建Redis键值存储
func NewRedisKV(client *redis.Client, keyPrefix string) *RedisKV {
	return &RedisKV{client: client, keyPrefix: keyPrefix}
}

func (s *RedisKV) itemKey(namespace, key string) string {
	return fmt.Sprintf("%sitem:%s:%s", s.keyPrefix, namespace, key)
}

func (s *RedisKV) indexKey(namespace string) string {
	return fmt.Sprintf("%sns:%s", s.keyPrefix, namespace)
}

// Get 读取键
func (s *RedisKV) Get(ctx context.Context, namespace, key string) (*repository.KVItem, error) {
	fields, err := s.client.HGetAll(ctx, s.itemKey(namespace, key)).Result()
	if err != nil {
		return nil, fmt.Errorf("读取键失败: %w", err)
	}
	if len(fields) == 0 {
		return nil, repository.ErrKeyNotFound
	}

	version, _ := strconv.ParseInt(fields["version"], 10, 64)
	updatedMs, _ := strconv.ParseInt(fields["updated_at"], 10, 64)
	return &repository.KVItem{
		Key:       key,
		Value:     fields["value"],
		Version:   version,
		UpdatedAt: time.UnixMilli(updatedMs),
	}, nil
}

// Set 写入键
func (s *RedisKV) Set(ctx context.Context, namespace, key, value string, expectedVersion int64) (*repository.KVItem, error) {
	now := time.Now()
	result, err := setScript.Run(ctx, s.client,
		[]string{s.itemKey(namespace, key), s.indexKey(namespace)},
		value, expectedVersion, now.UnixMilli(),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("执行Lua脚本失败: %w", err)
	}
	if result < 0 {
		return nil, repository.ErrVersionMismatch
	}

	return &repository.KVItem{
		Key:       key,
		Value:     value,
		Version:   result,
		UpdatedAt: time.UnixMilli(now.UnixMilli()),
	}, nil
}

// Delete 删除键
func (s *RedisKV) Delete(ctx context.Context, namespace, key string) error {
	itemKey := s.itemKey(namespace, key)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, itemKey)
	pipe.SRem(ctx, s.indexKey(namespace), itemKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("删除键失败: %w", err)
	}
	return nil
}

// Clear 清空命名空间
func (s *RedisKV) Clear(ctx context.Context, namespace string) error {
	if err := clearScript.Run(ctx, s.client, []string{s.indexKey(namespace)}).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("执行Lua脚本失败: %w", err)
	}
	return nil
}

var _ repository.KVRepository = (*RedisKV)(nil)
