package cache

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 效力计算缓存的命中统计
// 原子计数始终可用；Prometheus 计数器在 Register 之后才生效
type Metrics struct {
	Hits          atomic.Uint64
	Misses        atomic.Uint64
	Invalidations atomic.Uint64

	hitsCounter          prometheus.Counter
	missesCounter        prometheus.Counter
	invalidationsCounter prometheus.Counter

	registerOnce sync.Once
}

// Register 向 registry 注册 Prometheus 指标；registry 为 nil 时不注册，重复调用无副作用
func (m *Metrics) Register(registry prometheus.Registerer) {
	if registry == nil {
		return
	}

	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.hitsCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "sargenteacao_eligibility_cache_hits_total",
			Help: "Total number of eligibility cache hits",
		})
		m.missesCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "sargenteacao_eligibility_cache_misses_total",
			Help: "Total number of eligibility cache misses",
		})
		m.invalidationsCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "sargenteacao_eligibility_cache_invalidations_total",
			Help: "Total number of eligibility cache entries invalidated",
		})
	})
}

func (m *Metrics) incHit() {
	if m == nil {
		return
	}
	m.Hits.Add(1)
	if m.hitsCounter != nil {
		m.hitsCounter.Inc()
	}
}

func (m *Metrics) incMiss() {
	if m == nil {
		return
	}
	m.Misses.Add(1)
	if m.missesCounter != nil {
		m.missesCounter.Inc()
	}
}

func (m *Metrics) addInvalidations(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Invalidations.Add(uint64(n))
	if m.invalidationsCounter != nil {
		m.invalidationsCounter.Add(float64(n))
	}
}
