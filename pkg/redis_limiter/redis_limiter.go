package redis_limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ErrLimitReached 并发槽位已满
var ErrLimitReached = errors.New("并发限制已达到上限")

// 占用槽位：未满时计数加一并刷新过期时间，已满返回 -1
var acquireScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n >= tonumber(ARGV[1]) then
	return -1
end
n = redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return n
`)

// 归还槽位：计数归零时删除key
var releaseScript = redis.NewScript(`
local n = redis.call('DECR', KEYS[1])
if n <= 0 then
	redis.call('DEL', KEYS[1])
	return 0
end
redis.call('PEXPIRE', KEYS[1], ARGV[1])
return n
`)

// RedisLimiter 按邮箱限制同时进行的生成任务数
// 槽位带过期时间，进程崩溃后不会永久占用
type RedisLimiter struct {
	client    *redis.Client
	limit     int
	keyPrefix string
	ttl       time.Duration
	logger    logrus.FieldLogger
}

// NewRedisLimiter 创建基于Redis的并发限制器
func NewRedisLimiter(client *redis.Client, limit int, keyPrefix string, ttl time.Duration, logger logrus.FieldLogger) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// Acquire 占用一个槽位，已满时返回 ErrLimitReached
func (rl *RedisLimiter) Acquire(ctx context.Context, owner string) error {
	n, err := acquireScript.Run(ctx, rl.client, []string{rl.keyPrefix + owner}, rl.limit, rl.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("占用槽位失败: %w", err)
	}
	if n < 0 {
		rl.logger.WithFields(logrus.Fields{"owner": owner, "limit": rl.limit}).Warn("[RedisLimiter] 槽位已满")
		return fmt.Errorf("%w: %d", ErrLimitReached, rl.limit)
	}

	rl.logger.WithFields(logrus.Fields{"owner": owner, "in_use": n}).Debug("[RedisLimiter] 占用槽位")
	return nil
}

// Release 归还槽位
func (rl *RedisLimiter) Release(ctx context.Context, owner string) {
	n, err := releaseScript.Run(ctx, rl.client, []string{rl.keyPrefix + owner}, rl.ttl.Milliseconds()).Int()
	if err != nil {
		rl.logger.WithError(err).WithField("owner", owner).Error("[RedisLimiter] 归还槽位失败")
		return
	}
	rl.logger.WithFields(logrus.Fields{"owner": owner, "in_use": n}).Debug("[RedisLimiter] 归还槽位")
}

// InUse 当前占用的槽位数
func (rl *RedisLimiter) InUse(ctx context.Context, owner string) (int, error) {
	n, err := rl.client.Get(ctx, rl.keyPrefix+owner).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("读取槽位失败: %w", err)
	}
	return n, nil
}
