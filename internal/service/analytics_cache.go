package service

import (
	"context"
	"encoding/json"
	"fmt"
	"quiz_agent_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnalyticsCache 看板结果缓存；未命中返回 false
type AnalyticsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, keys ...string) error
}

const analyticsKeyPrefix = "quiz_agent:analytics:"

func quizAnalyticsKey(quizID string) string {
	return analyticsKeyPrefix + "quiz:" + quizID
}

func teacherAnalyticsKey(teacherID uint) string {
	return fmt.Sprintf("%steacher:%d", analyticsKeyPrefix, teacherID)
}

func studentListKey(teacherID uint) string {
	return fmt.Sprintf("%sstudents:%d", analyticsKeyPrefix, teacherID)
}

func userStatsKey(userID uint) string {
	return fmt.Sprintf("%suser:%d", analyticsKeyPrefix, userID)
}

func schoolAnalyticsKey(schoolID uint) string {
	return fmt.Sprintf("%sschool:%d", analyticsKeyPrefix, schoolID)
}

type RedisAnalyticsCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisAnalyticsCache(rdb *redis.Client, ttl time.Duration) *RedisAnalyticsCache {
	return &RedisAnalyticsCache{Redis: rdb, TTL: ttl}
}

func (c *RedisAnalyticsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.Redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisAnalyticsCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, key, data, c.TTL).Err()
}

func (c *RedisAnalyticsCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Redis.Del(ctx, keys...).Err()
}

// cached 缓存读写失败只记日志，不影响结果
func cached[T any](ctx context.Context, cache AnalyticsCache, key string, load func() (*T, error)) (*T, error) {
	if cache != nil {
		var hit T
		ok, err := cache.Get(ctx, key, &hit)
		if err != nil {
			logger.Log.Warn("Analytics cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return &hit, nil
		}
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Set(ctx, key, v); err != nil {
			logger.Log.Warn("Analytics cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}
