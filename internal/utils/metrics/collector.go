// internal/utils/metrics/collector.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricType представляет тип метрики
type MetricType string

const (
	FilterResultType     MetricType = "filter_result"
	FilterDurationType   MetricType = "filter_duration"
	PipelineResultType   MetricType = "pipeline_result"
	PipelineDurationType MetricType = "pipeline_duration"
)

const namespace = "pool_filter"

// Collector управляет набором метрик фильтрации пулов
type Collector struct {
	metrics sync.Map

	filterResults    *prometheus.CounterVec
	filterDuration   *prometheus.HistogramVec
	pipelineResults  *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
}

// NewCollector создает коллектор и регистрирует метрики в reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		filterResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filter_results_total",
				Help:      "Filter verdicts by filter name and outcome",
			},
			[]string{"filter", "status"},
		),
		filterDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "filter_duration_seconds",
				Help:      "Filter evaluation time in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"filter"},
		),
		pipelineResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pool_evaluations_total",
				Help:      "Pool evaluations by overall outcome",
			},
			[]string{"status"},
		),
		pipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pool_evaluation_duration_seconds",
				Help:      "Time to run every active filter against one pool",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
	}
	c.initializeMetrics(reg)
	return c
}

func (c *Collector) initializeMetrics(reg prometheus.Registerer) {
	metricsMap := map[MetricType]prometheus.Collector{
		FilterResultType:     c.filterResults,
		FilterDurationType:   c.filterDuration,
		PipelineResultType:   c.pipelineResults,
		PipelineDurationType: c.pipelineDuration,
	}

	for metricType, metric := range metricsMap {
		c.metrics.Store(metricType, metric)
		if reg != nil {
			reg.MustRegister(metric)
		}
	}
}

// Reset сбрасывает все метрики (полезно для тестирования)
func (c *Collector) Reset() {
	c.metrics.Range(func(_, value interface{}) bool {
		switch m := value.(type) {
		case *prometheus.CounterVec:
			m.Reset()
		case *prometheus.HistogramVec:
			m.Reset()
		}
		return true
	})
}
