// Package services 编排浏览记账与热度排序用例。
package services

import (
	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"

	"github.com/google/wire"
)

// ProviderSet is services providers.
var ProviderSet = wire.NewSet(
	ProvideRateGate,
	ProvideRankerConfig,
	NewViewRecorder,
	NewPopularityRanker,
	NewPlaylistViewService,
)

// ProvideRateGate 根据 view 配置构造限流判定器。
func ProvideRateGate(cfg configloader.ViewConfig) *RateGate {
	return NewRateGate(cfg.RateWindow, cfg.LastViewCacheSize)
}

// ProvideRankerConfig 转换 ranking 配置。
func ProvideRankerConfig(cfg configloader.RankingConfig) RankerConfig {
	return RankerConfig{
		RecentWindow:  cfg.RecentWindow,
		RefreshRecent: cfg.RefreshRecent,
	}
}
