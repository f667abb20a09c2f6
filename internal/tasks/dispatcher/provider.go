package dispatcher

import (
	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProvidePool 根据配置装配任务池。
func ProvidePool(cfg configloader.DispatcherConfig, logger log.Logger) *Pool {
	return NewPool(Config{
		Workers:     cfg.Workers,
		QueueSize:   cfg.QueueSize,
		TaskTimeout: cfg.TaskTimeout,
	}, logger)
}

// ProviderSet 暴露任务池构造器。
var ProviderSet = wire.NewSet(ProvidePool)
