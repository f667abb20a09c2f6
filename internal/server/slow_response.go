package server

import (
	"context"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/tasks/dispatcher"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// DefaultSlowResponseThreshold 是触发慢响应告警的默认耗时。
const DefaultSlowResponseThreshold = 3 * time.Second

// SlowResponse 描述一次慢响应。
type SlowResponse struct {
	Method    string
	Path      string
	Operation string
	Elapsed   time.Duration
}

// Message 返回 "[API-RESPONSE] GET /api/v1/playlists/7, took 3132ms" 格式的告警文本。
func (s SlowResponse) Message() string {
	return fmt.Sprintf("[API-RESPONSE] %s %s, took %dms", s.Method, s.Path, s.Elapsed.Milliseconds())
}

// Alerter 接收慢响应告警。返回值仅用于监控，不影响响应。
type Alerter interface {
	Alert(ctx context.Context, resp SlowResponse) (bool, error)
}

// LogAlerter 把告警写入日志，作为未配置外部通道时的默认实现。
type LogAlerter struct {
	log *log.Helper
}

// NewLogAlerter 构造日志告警器。
func NewLogAlerter(logger log.Logger) *LogAlerter {
	return &LogAlerter{log: log.NewHelper(logger)}
}

// Alert 实现 Alerter。
func (a *LogAlerter) Alert(ctx context.Context, resp SlowResponse) (bool, error) {
	a.log.WithContext(ctx).Infow("msg", "slow response alert", "alert", resp.Message(), "operation", resp.Operation)
	return true, nil
}

// SlowResponseOptions 配置慢响应中间件。
type SlowResponseOptions struct {
	Threshold time.Duration
	Alerter   Alerter
	Pool      *dispatcher.Pool
	Logger    log.Logger
	Now       func() time.Time
}

// SlowResponseAlert 在处理耗时达到阈值时以 WARN 记录日志，并把告警异步交给 Alerter。
// 告警投递失败只记录日志，不改变响应。
func SlowResponseAlert(opts SlowResponseOptions) middleware.Middleware {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultSlowResponseThreshold
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	helper := log.NewHelper(opts.Logger)
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			start := now()
			reply, err := handler(ctx, req)
			elapsed := now().Sub(start)
			if elapsed < threshold {
				return reply, err
			}
			slow := describe(ctx, elapsed)
			helper.WithContext(ctx).Warn(slow.Message())
			deliver(ctx, opts, helper, slow)
			return reply, err
		}
	}
}

func describe(ctx context.Context, elapsed time.Duration) SlowResponse {
	slow := SlowResponse{Elapsed: elapsed}
	tr, ok := transport.FromServerContext(ctx)
	if !ok {
		return slow
	}
	slow.Operation = tr.Operation()
	if ht, ok := tr.(khttp.Transporter); ok && ht.Request() != nil {
		slow.Method = ht.Request().Method
		slow.Path = ht.Request().URL.Path
	} else {
		slow.Method = tr.Kind().String()
		slow.Path = tr.Operation()
	}
	return slow
}

func deliver(ctx context.Context, opts SlowResponseOptions, helper *log.Helper, slow SlowResponse) {
	if opts.Alerter == nil {
		return
	}
	task := func(taskCtx context.Context) (bool, error) {
		return opts.Alerter.Alert(taskCtx, slow)
	}
	if opts.Pool == nil {
		go func() {
			if _, err := task(context.WithoutCancel(ctx)); err != nil {
				helper.WithContext(ctx).Warnw("msg", "deliver slow response alert failed", "error", err)
			}
		}()
		return
	}
	opts.Pool.TrySubmit(ctx, "slow_response_alert", task)
}
