package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"sargenteacao/backend/internal/model"
)

const redisKeyPrefix = "eligibility:"

// KVStore RedisCache 依赖的最小键值能力，由 pkg/redis.Client 实现
type KVStore interface {
	SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, prefix string) ([]string, error)
}

// RedisCache 多实例共享缓存，键为 eligibility:<yyyy-mm-dd>，值为 JSON，过期交给 Redis
type RedisCache struct {
	store   KVStore
	ttl     time.Duration
	metrics *Metrics
	logger  *zap.Logger
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(store KVStore, ttl time.Duration, metrics *Metrics, logger *zap.Logger) *RedisCache {
	return &RedisCache{store: store, ttl: ttl, metrics: metrics, logger: logger}
}

func redisKey(date time.Time) string {
	return redisKeyPrefix + model.FormatDate(model.DateOf(date))
}

func (c *RedisCache) Get(ctx context.Context, date time.Time) ([]model.EligibilityResult, bool) {
	b, ok, err := c.store.GetBytes(ctx, redisKey(date))
	if err != nil {
		c.logger.Warn("读取效力缓存失败，降级为重新计算", zap.String("date", model.FormatDate(date)), zap.Error(err))
		c.metrics.incMiss()
		return nil, false
	}
	if !ok {
		c.metrics.incMiss()
		return nil, false
	}

	var results []model.EligibilityResult
	if err := json.Unmarshal(b, &results); err != nil {
		c.logger.Warn("效力缓存内容损坏，已丢弃", zap.String("date", model.FormatDate(date)), zap.Error(err))
		_ = c.store.Delete(ctx, redisKey(date))
		c.metrics.incMiss()
		return nil, false
	}
	c.metrics.incHit()
	return results, true
}

func (c *RedisCache) Set(ctx context.Context, date time.Time, results []model.EligibilityResult) {
	b, err := json.Marshal(results)
	if err != nil {
		c.logger.Warn("序列化效力结果失败", zap.Error(err))
		return
	}
	if err := c.store.SetBytes(ctx, redisKey(date), b, c.ttl); err != nil {
		c.logger.Warn("写入效力缓存失败", zap.String("date", model.FormatDate(date)), zap.Error(err))
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, dates ...time.Time) {
	if len(dates) == 0 {
		return
	}
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, redisKey(d))
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Error("失效效力缓存失败", zap.Strings("keys", keys), zap.Error(err))
		return
	}
	c.metrics.addInvalidations(len(keys))
}

func (c *RedisCache) InvalidateRange(ctx context.Context, start, end time.Time) {
	c.deleteWhere(ctx, func(d time.Time) bool { return inRange(d, start, end) })
}

func (c *RedisCache) InvalidateFrom(ctx context.Context, date time.Time) {
	from := model.DateOf(date)
	all := date.IsZero()
	c.deleteWhere(ctx, func(d time.Time) bool { return all || !d.Before(from) })
}

// deleteWhere SCAN 现有键后按日期筛选删除，键数只取决于已缓存的日期
func (c *RedisCache) deleteWhere(ctx context.Context, match func(d time.Time) bool) {
	keys, err := c.store.ScanKeys(ctx, redisKeyPrefix)
	if err != nil {
		c.logger.Error("扫描效力缓存键失败", zap.Error(err))
		return
	}

	var stale []string
	for _, key := range keys {
		d, err := model.ParseDate(strings.TrimPrefix(key, redisKeyPrefix))
		if err != nil {
			stale = append(stale, key) // 无法识别的键一并清理
			continue
		}
		if match(d) {
			stale = append(stale, key)
		}
	}
	if len(stale) == 0 {
		return
	}
	if err := c.store.Delete(ctx, stale...); err != nil {
		c.logger.Error("失效效力缓存失败", zap.Int("count", len(stale)), zap.Error(err))
		return
	}
	c.metrics.addInvalidations(len(stale))
}
