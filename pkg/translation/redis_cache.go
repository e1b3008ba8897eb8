package translation

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix 默认的 Redis key 前缀
const DefaultRedisKeyPrefix = "dicttr:"

// RedisConfig Redis缓存配置
type RedisConfig struct {
	// URL 连接串，例如 redis://localhost:6379/0
	URL string
	// TTL 过期秒数，0 表示不过期
	TTL int
	// KeyPrefix 所有key的前缀
	KeyPrefix string
}

// RedisCache Redis缓存实现，多进程共享翻译结果
type RedisCache struct {
	client    redis.Cmdable
	closer    func() error
	ttl       time.Duration
	keyPrefix string

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCache 创建Redis缓存并验证连接
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	cache := NewRedisCacheFromClient(client, cfg.TTL, cfg.KeyPrefix)
	cache.closer = client.Close
	return cache, nil
}

// NewRedisCacheFromClient 从现有客户端创建Redis缓存，测试时注入mock
func NewRedisCacheFromClient(client redis.Cmdable, ttlSeconds int, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get 获取缓存
func (c *RedisCache) Get(key string) (string, bool) {
	val, err := c.client.Get(context.Background(), c.keyPrefix+key).Result()
	if err != nil {
		// redis.Nil 和连接错误都按未命中处理
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return val, true
}

// Set 设置缓存，使用配置的默认TTL
func (c *RedisCache) Set(key string, value string) error {
	return c.client.Set(context.Background(), c.keyPrefix+key, value, c.ttl).Err()
}

// SetWithTTL 设置带过期时间的缓存
func (c *RedisCache) SetWithTTL(key string, value string, ttl time.Duration) error {
	return c.client.Set(context.Background(), c.keyPrefix+key, value, ttl).Err()
}

// Delete 删除缓存
func (c *RedisCache) Delete(key string) error {
	return c.client.Del(context.Background(), c.keyPrefix+key).Err()
}

// Clear 清除本前缀下的所有缓存
func (c *RedisCache) Clear() error {
	ctx := context.Background()
	keys, err := c.client.Keys(ctx, c.keyPrefix+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Stats 获取缓存统计信息
func (c *RedisCache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Ping 测试连接
func (c *RedisCache) Ping() error {
	return c.client.Ping(context.Background()).Err()
}

// Close 关闭连接
func (c *RedisCache) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
