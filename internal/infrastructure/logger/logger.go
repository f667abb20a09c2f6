// Package logger 构造带 trace 关联字段的 Kratos 日志实例。
package logger

import (
	"context"

	gclog "github.com/bionicotaku/lingo-utils/gclog"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/trace"
)

// Config captures runtime metadata used to annotate logs.
type Config struct {
	Service string
	Version string
	HostID  string
	Env     string
}

// NewLogger builds the gclog backed logger and appends trace_id / span_id valuers.
func NewLogger(cfg Config) (log.Logger, error) {
	labels := map[string]string{}
	if cfg.HostID != "" {
		labels["service.id"] = cfg.HostID
	}
	baseLogger, err := gclog.NewLogger(
		gclog.WithService(cfg.Service),
		gclog.WithVersion(cfg.Version),
		gclog.WithEnvironment(cfg.Env),
		gclog.WithStaticLabels(labels),
		gclog.EnableSourceLocation(),
	)
	if err != nil {
		return nil, err
	}
	return WithTrace(baseLogger), nil
}

// WithTrace 为任意 logger 追加 trace_id / span_id 字段。
func WithTrace(base log.Logger) log.Logger {
	return log.With(base,
		"trace_id", log.Valuer(traceID),
		"span_id", log.Valuer(spanID),
	)
}

func traceID(ctx context.Context) interface{} {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

func spanID(ctx context.Context) interface{} {
	if sc := trace.SpanContextFromContext(ctx); sc.HasSpanID() {
		return sc.SpanID().String()
	}
	return ""
}
