// Package cache 按参考日期缓存效力计算结果。
//
// 写入勤务 / 离岗 / 军人数据的操作负责同步失效受影响的日期，
// 读取方在未命中时重新计算并回填；并发回填以最后写入者为准。
package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sargenteacao/backend/config"
	"sargenteacao/backend/internal/model"
)

// DefaultTTL 缓存条目默认有效期
const DefaultTTL = 5 * time.Minute

// ResultCache 效力计算结果缓存
// 缓存故障只降级为未命中，不向调用方返回错误
type ResultCache interface {
	// Get 读取 date 的缓存结果，未命中或已过期时 ok=false
	Get(ctx context.Context, date time.Time) (results []model.EligibilityResult, ok bool)
	// Set 写入 date 的计算结果
	Set(ctx context.Context, date time.Time, results []model.EligibilityResult)
	// Invalidate 失效指定日期
	Invalidate(ctx context.Context, dates ...time.Time)
	// InvalidateRange 失效闭区间 [start, end] 内已缓存的日期，开销与区间长度无关
	InvalidateRange(ctx context.Context, start, end time.Time)
	// InvalidateFrom 失效 date 及之后的全部日期；零值时间失效全部
	InvalidateFrom(ctx context.Context, date time.Time)
}

// inRange date 是否落在闭区间 [start, end] 内
func inRange(date, start, end time.Time) bool {
	return !date.Before(model.DateOf(start)) && !date.After(model.DateOf(end))
}

// New 按 cache.backend 构建缓存实现
// store 仅在 backend=redis 时使用
func New(cfg *config.CacheConfig, store KVStore, metrics *Metrics, logger *zap.Logger) (ResultCache, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch cfg.Backend {
	case "memory", "":
		return NewMemoryCache(ttl, cfg.SweepInterval, metrics), nil
	case "redis":
		if store == nil {
			return nil, fmt.Errorf("cache.backend=redis 但 Redis 未连接")
		}
		return NewRedisCache(store, ttl, metrics, logger), nil
	case "none":
		return NoopCache{}, nil
	default:
		return nil, fmt.Errorf("未知的缓存后端: %s", cfg.Backend)
	}
}

// cloneResults 拷贝结果切片及其中的指针字段，调用方修改返回值不影响缓存内容
func cloneResults(results []model.EligibilityResult) []model.EligibilityResult {
	if results == nil {
		return nil
	}
	out := make([]model.EligibilityResult, len(results))
	copy(out, results)
	for i := range out {
		if d := out[i].DaysSinceLastDuty; d != nil {
			v := *d
			out[i].DaysSinceLastDuty = &v
		}
	}
	return out
}

// NoopCache 关闭缓存：始终未命中
type NoopCache struct{}

func (NoopCache) Get(context.Context, time.Time) ([]model.EligibilityResult, bool) { return nil, false }
func (NoopCache) Set(context.Context, time.Time, []model.EligibilityResult)        {}
func (NoopCache) Invalidate(context.Context, ...time.Time)                         {}
func (NoopCache) InvalidateRange(context.Context, time.Time, time.Time)            {}
func (NoopCache) InvalidateFrom(context.Context, time.Time)                        {}
