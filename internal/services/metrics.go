package services

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricNameViewAccepted = "playlist_view_accepted_total"
	metricNameViewRejected = "playlist_view_rejected_total"
	metricNameViewFailed   = "playlist_view_failed_total"
	metricNameViewLatency  = "playlist_view_record_latency_ms"
)

type viewMetrics struct {
	accepted metric.Int64Counter
	rejected metric.Int64Counter
	failed   metric.Int64Counter
	latency  metric.Float64Histogram
	enabled  bool
}

func newViewMetrics(helper *log.Helper) *viewMetrics {
	meter := otel.GetMeterProvider().Meter("lingo-services-playlist.views")
	m := &viewMetrics{}
	var err error
	if m.accepted, err = meter.Int64Counter(metricNameViewAccepted,
		metric.WithDescription("Number of playlist views accepted and persisted")); err != nil {
		helper.Warnf("view metrics: register accepted counter: %v", err)
		return m
	}
	if m.rejected, err = meter.Int64Counter(metricNameViewRejected,
		metric.WithDescription("Number of playlist views rejected by the rate window")); err != nil {
		helper.Warnf("view metrics: register rejected counter: %v", err)
	}
	if m.failed, err = meter.Int64Counter(metricNameViewFailed,
		metric.WithDescription("Number of playlist views that failed to persist")); err != nil {
		helper.Warnf("view metrics: register failed counter: %v", err)
	}
	if m.latency, err = meter.Float64Histogram(metricNameViewLatency,
		metric.WithDescription("Latency of a single view recording unit"), metric.WithUnit("ms")); err != nil {
		helper.Warnf("view metrics: register latency histogram: %v", err)
	}
	m.enabled = true
	return m
}

func (m *viewMetrics) recordAccepted(ctx context.Context, start time.Time) {
	if m == nil || !m.enabled {
		return
	}
	m.accepted.Add(ctx, 1)
	m.observe(ctx, start, "accepted")
}

func (m *viewMetrics) recordRejected(ctx context.Context, start time.Time) {
	if m == nil || !m.enabled || m.rejected == nil {
		return
	}
	m.rejected.Add(ctx, 1)
	m.observe(ctx, start, "rejected")
}

func (m *viewMetrics) recordFailure(ctx context.Context, start time.Time) {
	if m == nil || !m.enabled || m.failed == nil {
		return
	}
	m.failed.Add(ctx, 1)
	m.observe(ctx, start, "failed")
}

func (m *viewMetrics) observe(ctx context.Context, start time.Time, outcome string) {
	if m.latency == nil {
		return
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	m.latency.Record(ctx, elapsed, metric.WithAttributes(attribute.String("outcome", outcome)))
}
