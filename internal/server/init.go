package server

import "github.com/google/wire"

// ProviderSet 暴露 HTTP 服务、遥测与告警构造器。
var ProviderSet = wire.NewSet(
	NewTelemetry,
	NewLogAlerter,
	wire.Bind(new(Alerter), new(*LogAlerter)),
	NewHTTPServer,
)
