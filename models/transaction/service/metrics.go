package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	transactions *prometheus.CounterVec
	settlements  prometheus.Counter
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			transactions: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "split_transactions_total",
				Help: "Total number of created transactions by split method",
			}, []string{"method"}),
			settlements: promauto.With(defaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "split_settlements_total",
				Help: "Total number of transactions that became settled",
			}),
		}
	})
	return metricsInstance
}

// For testing purposes - reset metrics
func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}
