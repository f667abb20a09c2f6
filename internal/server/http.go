package server

import (
	"github.com/bionicotaku/lingo-services-playlist/internal/controllers"
	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-playlist/internal/tasks/dispatcher"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/metadata"
	kmetrics "github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer 构造 HTTP 服务并挂载业务路由、探针与 /metrics。
func NewHTTPServer(
	c configloader.ServerConfig,
	telemetry *Telemetry,
	playlists *controllers.PlaylistHandler,
	health *controllers.HealthHandler,
	alerter Alerter,
	pool *dispatcher.Pool,
	logger log.Logger,
) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			metadata.Server(
				metadata.WithPropagatedPrefix("x-md-"),
			),
			kmetrics.Server(
				kmetrics.WithRequests(telemetry.RequestCounter),
				kmetrics.WithSeconds(telemetry.SecondsHistogram),
			),
			SlowResponseAlert(SlowResponseOptions{
				Threshold: c.SlowResponseThreshold,
				Alerter:   alerter,
				Pool:      pool,
				Logger:    logger,
			}),
			logging.Server(logger),
		),
	}
	if c.Network != "" {
		opts = append(opts, http.Network(c.Network))
	}
	if c.Address != "" {
		opts = append(opts, http.Address(c.Address))
	}
	if c.Timeout > 0 {
		opts = append(opts, http.Timeout(c.Timeout))
	}

	srv := http.NewServer(opts...)
	srv.Handle("/metrics", promhttp.HandlerFor(telemetry.PrometheusRegistry, promhttp.HandlerOpts{}))
	health.RegisterRoutes(srv)
	playlists.RegisterRoutes(srv)
	return srv
}
