package cache

import (
	"context"
	"sync"
	"time"

	"sargenteacao/backend/internal/model"
)

type memoryEntry struct {
	results   []model.EligibilityResult
	expiresAt time.Time
}

// MemoryCache 进程内缓存
// 过期条目在读取时惰性剔除，另有后台清理协程定期回收，Close 停止清理协程
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[time.Time]memoryEntry
	ttl     time.Duration
	metrics *Metrics
	now     func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryCache 创建进程内缓存；sweepInterval<=0 时不启动清理协程
func NewMemoryCache(ttl, sweepInterval time.Duration, metrics *Metrics) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[time.Time]memoryEntry),
		ttl:     ttl,
		metrics: metrics,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.janitor(sweepInterval)
	} else {
		close(c.done)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, date time.Time) ([]model.EligibilityResult, bool) {
	key := model.DateOf(date)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		c.metrics.incMiss()
		return nil, false
	}
	c.metrics.incHit()
	return cloneResults(e.results), true
}

func (c *MemoryCache) Set(_ context.Context, date time.Time, results []model.EligibilityResult) {
	c.mu.Lock()
	c.entries[model.DateOf(date)] = memoryEntry{
		results:   cloneResults(results),
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(_ context.Context, dates ...time.Time) {
	removed := 0
	c.mu.Lock()
	for _, d := range dates {
		key := model.DateOf(d)
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()
	c.metrics.addInvalidations(removed)
}

func (c *MemoryCache) InvalidateRange(_ context.Context, start, end time.Time) {
	c.removeWhere(func(key time.Time) bool { return inRange(key, start, end) })
}

func (c *MemoryCache) InvalidateFrom(_ context.Context, date time.Time) {
	from := model.DateOf(date)
	all := date.IsZero()
	c.removeWhere(func(key time.Time) bool { return all || !key.Before(from) })
}

// removeWhere 遍历现有条目删除命中者，只与条目数相关
func (c *MemoryCache) removeWhere(match func(key time.Time) bool) {
	removed := 0
	c.mu.Lock()
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()
	c.metrics.addInvalidations(removed)
}

// Len 当前条目数（含尚未清理的过期条目）
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close 停止后台清理协程，可重复调用
func (c *MemoryCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
}

func (c *MemoryCache) janitor(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) sweep() {
	now := c.now()
	c.mu.Lock()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
