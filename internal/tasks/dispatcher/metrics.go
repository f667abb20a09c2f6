package dispatcher

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricNameQueued  = "dispatcher_task_queued_total"
	metricNameFailed  = "dispatcher_task_failed_total"
	metricNameQueueMs = "dispatcher_queue_wait_ms"
)

type poolMetrics struct {
	queued  metric.Int64Counter
	failed  metric.Int64Counter
	wait    metric.Float64Histogram
	enabled bool
}

func newPoolMetrics(meter metric.Meter, helper *log.Helper) *poolMetrics {
	m := &poolMetrics{}
	if meter == nil {
		return m
	}
	var err error
	if m.queued, err = meter.Int64Counter(metricNameQueued,
		metric.WithDescription("Number of tasks accepted into the dispatcher queue")); err != nil {
		helper.Warnf("dispatcher metrics: register queued counter: %v", err)
		return m
	}
	if m.failed, err = meter.Int64Counter(metricNameFailed,
		metric.WithDescription("Number of dispatcher tasks that returned an error or panicked")); err != nil {
		helper.Warnf("dispatcher metrics: register failed counter: %v", err)
	}
	if m.wait, err = meter.Float64Histogram(metricNameQueueMs,
		metric.WithDescription("Time tasks spent waiting in the dispatcher queue"), metric.WithUnit("ms")); err != nil {
		helper.Warnf("dispatcher metrics: register wait histogram: %v", err)
	}
	m.enabled = true
	return m
}

func (m *poolMetrics) recordQueued(ctx context.Context, task string) {
	if m == nil || !m.enabled || m.queued == nil {
		return
	}
	m.queued.Add(ctx, 1, metric.WithAttributes(attribute.String("task", task)))
}

func (m *poolMetrics) recordFailure(ctx context.Context, task string) {
	if m == nil || !m.enabled || m.failed == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("task", task)))
}

func (m *poolMetrics) recordWait(ctx context.Context, task string, d time.Duration) {
	if m == nil || !m.enabled || m.wait == nil {
		return
	}
	m.wait.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(attribute.String("task", task)))
}
