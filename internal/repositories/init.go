package repositories

import "github.com/google/wire"

// ProviderSet 暴露 PostgreSQL 仓储构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewPlaylistViewRepository,
	NewPlaylistStatsRepository,
	NewPlaylistRepository,
)
