package configloader

import (
	txconfig "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/wire"
)

// ProviderSet exposes configuration-derived dependencies for Wire graphs.
var ProviderSet = wire.NewSet(
	ProvideServiceMetadata,
	ProvideRuntimeConfig,
	ProvideServerConfig,
	ProvideDatabaseConfig,
	ProvideViewConfig,
	ProvideDispatcherConfig,
	ProvideRankingConfig,
	ProvideTxConfig,
)

// ProvideServiceMetadata returns the resolved ServiceMetadata from the loader.
func ProvideServiceMetadata(l *Loader) ServiceMetadata {
	if l == nil {
		return ServiceMetadata{}
	}
	return l.Service
}

// ProvideRuntimeConfig exposes the normalized runtime configuration.
func ProvideRuntimeConfig(l *Loader) RuntimeConfig {
	if l == nil {
		rc := RuntimeConfig{}
		fillDefaults(&rc)
		return rc
	}
	return l.Runtime
}

// ProvideServerConfig returns the HTTP server section.
func ProvideServerConfig(rc RuntimeConfig) ServerConfig { return rc.Server }

// ProvideDatabaseConfig returns the storage section.
func ProvideDatabaseConfig(rc RuntimeConfig) DatabaseConfig { return rc.Database }

// ProvideViewConfig returns the view rate limiting section.
func ProvideViewConfig(rc RuntimeConfig) ViewConfig { return rc.View }

// ProvideDispatcherConfig returns the background pool section.
func ProvideDispatcherConfig(rc RuntimeConfig) DispatcherConfig { return rc.Dispatcher }

// ProvideRankingConfig returns the ranking section.
func ProvideRankingConfig(rc RuntimeConfig) RankingConfig { return rc.Ranking }

// ProvideTxConfig exposes txmanager defaults derived from data.postgres.transaction.
func ProvideTxConfig(rc RuntimeConfig) txconfig.Config {
	return toTxManagerConfig(rc.Database)
}
