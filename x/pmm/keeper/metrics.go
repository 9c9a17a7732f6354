package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the pool engine.
type Metrics struct {
	SwapsTotal    *prometheus.CounterVec
	SwapVolume    *prometheus.CounterVec
	FeesCollected *prometheus.CounterVec

	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec

	PoolsCreated prometheus.Counter
	ActivePools  prometheus.Gauge
}

var (
	metricsOnce   sync.Once
	engineMetrics *Metrics
)

// NewMetrics creates and registers the engine metrics once per process.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		engineMetrics = &Metrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "asle",
					Subsystem: "pmm",
					Name:      "swaps_total",
					Help:      "Total number of swaps executed",
				},
				[]string{"pool_id", "denom_in", "denom_out", "status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "asle",
					Subsystem: "pmm",
					Name:      "swap_volume_total",
					Help:      "Total swap input volume in base units",
				},
				[]string{"pool_id", "denom"},
			),
			FeesCollected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "asle",
					Subsystem: "pmm",
					Name:      "fees_collected_total",
					Help:      "Total trading fees collected",
				},
				[]string{"pool_id", "denom", "destination"},
			),
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "asle",
					Subsystem: "pmm",
					Name:      "liquidity_added_total",
					Help:      "Total liquidity deposited into pools",
				},
				[]string{"pool_id", "denom"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "asle",
					Subsystem: "pmm",
					Name:      "liquidity_removed_total",
					Help:      "Total liquidity withdrawn from pools",
				},
				[]string{"pool_id", "denom"},
			),
			PoolsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "asle",
					Subsystem: "pmm",
					Name:      "pools_created_total",
					Help:      "Total number of pools created",
				},
			),
			ActivePools: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "asle",
					Subsystem: "pmm",
					Name:      "active_pools",
					Help:      "Number of active pools",
				},
			),
		}
	})
	return engineMetrics
}
