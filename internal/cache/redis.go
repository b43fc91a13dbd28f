// Package cache 提供 Redis 操作的封装
// 多实例部署时用作会话追加消息的分布式锁
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pocket-chat-server/internal/config"
)

// ErrLockTimeout 在 lock_wait 时间内没有拿到锁
var ErrLockTimeout = errors.New("timed out waiting for lock")

// lockRetryInterval 抢锁失败后的重试间隔
const lockRetryInterval = 20 * time.Millisecond

// unlockScript 只有锁仍属于自己时才删除，避免误删别人在 TTL 过期后拿到的锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCache 封装 Redis 客户端
type RedisCache struct {
	client   *redis.Client // Redis 客户端实例
	lockTTL  time.Duration
	lockWait time.Duration
}

// NewRedisCache 创建 RedisCache 实例
// 参数:
//   - cfg: Redis 配置
//
// 返回:
//   - *RedisCache: 缓存实例
//   - error: 连接错误
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client:   client,
		lockTTL:  cfg.LockTTL,
		lockWait: cfg.LockWait,
	}, nil
}

// Close 关闭 Redis 连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 检查 Redis 连接
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Lock 获取分布式锁
// 使用 SET NX PX 写入随机 token，失败时按固定间隔重试，最多等待 lock_wait
// 锁在 lock_ttl 后自动过期，持锁进程崩溃也不会永久阻塞
// 参数:
//   - ctx: 上下文
//   - key: 锁的键，例如 "conversation:1:append"
//
// 返回:
//   - func(): 释放锁
//   - error: 等待超时返回 ErrLockTimeout，其他为 Redis 错误
func (c *RedisCache) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	key = "lock:" + key

	waitCtx := ctx
	if c.lockWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.lockWait)
		defer cancel()
	}

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := c.client.SetNX(waitCtx, key, token, c.lockTTL).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, err
		}
		if ok {
			return func() {
				// 释放锁不受请求上下文影响，请求取消后也要删掉
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				unlockScript.Run(ctx, c.client, []string{key}, token)
			}, nil
		}

		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrLockTimeout
		}
	}
}
