// internal/utils/metrics/metrics.go
package metrics

import (
	"time"
)

func status(ok bool) string {
	if ok {
		return "pass"
	}
	return "reject"
}

// ObserveFilter записывает вердикт и длительность одного фильтра
func (c *Collector) ObserveFilter(name string, ok bool, duration time.Duration) {
	c.filterResults.WithLabelValues(name, status(ok)).Inc()
	c.filterDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// ObservePipeline записывает итог оценки пула
func (c *Collector) ObservePipeline(ok bool, duration time.Duration) {
	c.pipelineResults.WithLabelValues(status(ok)).Inc()
	c.pipelineDuration.Observe(duration.Seconds())
}
