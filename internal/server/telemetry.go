package server

import (
	"context"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	kmetrics "github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	promexp "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// RequestSecondsBuckets 是 HTTP 请求耗时分桶（秒）。歌单读取与排序接口大多在数十毫秒内返回，
// 分桶集中在 1ms 到 2.5s。
var RequestSecondsBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// TaskMillisBuckets 是浏览记账与任务排队耗时分桶（毫秒），上限覆盖默认任务超时 5s。
var TaskMillisBuckets = []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// millisHistograms 是使用 TaskMillisBuckets 的后台指标。
var millisHistograms = []string{"playlist_view_record_latency_ms", "dispatcher_queue_wait_ms"}

func bucketView(name string, bounds []float64) sdkmetric.View {
	return sdkmetric.NewView(
		sdkmetric.Instrument{Name: name, Kind: sdkmetric.InstrumentKindHistogram},
		sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: bounds}},
	)
}

// Telemetry bundles the shared metric instruments and registry.
type Telemetry struct {
	MeterProvider      *sdkmetric.MeterProvider
	RequestCounter     metric.Int64Counter
	SecondsHistogram   metric.Float64Histogram
	PrometheusRegistry *prometheus.Registry
}

// NewTelemetry 注册 Prometheus exporter 并设置全局 MeterProvider。
// 业务包通过 otel.GetMeterProvider() 创建的指标会随之导出到 /metrics。
func NewTelemetry(meta configloader.ServiceMetadata, logger log.Logger) (*Telemetry, func(), error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	exporter, err := promexp.New(
		promexp.WithRegisterer(registry),
		promexp.WithoutUnits(),
	)
	if err != nil {
		return nil, nil, err
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithReader(exporter),
		sdkmetric.WithView(bucketView(kmetrics.DefaultServerSecondsHistogramName, RequestSecondsBuckets)),
	}
	for _, name := range millisHistograms {
		opts = append(opts, sdkmetric.WithView(bucketView(name, TaskMillisBuckets)))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	name := meta.Name
	if name == "" {
		name = "lingo-services-playlist"
	}
	meter := mp.Meter(name)

	requestCounter, err := kmetrics.DefaultRequestsCounter(meter, kmetrics.DefaultServerRequestsCounterName)
	if err != nil {
		return nil, nil, err
	}
	secondsHistogram, err := kmetrics.DefaultSecondsHistogram(meter, kmetrics.DefaultServerSecondsHistogramName)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(ctx); err != nil {
			log.NewHelper(logger).Warnf("shutdown meter provider: %v", err)
		}
	}

	return &Telemetry{
		MeterProvider:      mp,
		RequestCounter:     requestCounter,
		SecondsHistogram:   secondsHistogram,
		PrometheusRegistry: registry,
	}, cleanup, nil
}
