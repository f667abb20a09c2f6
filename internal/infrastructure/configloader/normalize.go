package configloader

import txconfig "github.com/bionicotaku/lingo-utils/txmanager"

func fromBootstrap(b *Bootstrap) RuntimeConfig {
	if b == nil {
		return RuntimeConfig{}
	}
	pg := b.Data.Postgres
	rc := RuntimeConfig{
		Server: ServerConfig{
			Network:               b.Server.HTTP.Network,
			Address:               b.Server.HTTP.Addr,
			Timeout:               b.Server.HTTP.Timeout.Std(),
			SlowResponseThreshold: b.Server.SlowResponseThreshold.Std(),
		},
		Database: DatabaseConfig{
			Driver:            b.Data.Driver,
			DSN:               pg.DSN,
			MaxOpenConns:      pg.MaxOpenConns,
			MinOpenConns:      pg.MinOpenConns,
			MaxConnLifetime:   pg.MaxConnLifetime.Std(),
			MaxConnIdleTime:   pg.MaxConnIdleTime.Std(),
			HealthCheckPeriod: pg.HealthCheckPeriod.Std(),
			Schema:            pg.Schema,
			PreparedStmts:     pg.EnablePreparedStatements,
			Transaction: TransactionConfig{
				DefaultIsolation: pg.Transaction.DefaultIsolation,
				DefaultTimeout:   pg.Transaction.DefaultTimeout.Std(),
				LockTimeout:      pg.Transaction.LockTimeout.Std(),
				MaxRetries:       pg.Transaction.MaxRetries,
				MetricsEnabled:   pg.Transaction.MetricsEnabled,
			},
			MemoryPlaylists: append([]MemoryPlaylist(nil), b.Data.Memory.Playlists...),
		},
		View: ViewConfig{
			RateWindow:        b.View.RateWindow.Std(),
			LastViewCacheSize: b.View.LastViewCacheSize,
		},
		Dispatcher: DispatcherConfig{
			Workers:     b.Dispatcher.Workers,
			QueueSize:   b.Dispatcher.QueueSize,
			TaskTimeout: b.Dispatcher.TaskTimeout.Std(),
		},
		Ranking: RankingConfig{
			RecentWindow:  b.Ranking.RecentWindow.Std(),
			RefreshRecent: b.Ranking.RefreshRecent == nil || *b.Ranking.RefreshRecent,
		},
	}
	fillDefaults(&rc)
	return rc
}

func fillDefaults(cfg *RuntimeConfig) {
	if cfg.Server.Network == "" {
		cfg.Server.Network = "tcp"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultHTTPAddr
	}
	if cfg.Server.Timeout <= 0 {
		cfg.Server.Timeout = defaultHTTPTimeout
	}
	if cfg.Server.SlowResponseThreshold <= 0 {
		cfg.Server.SlowResponseThreshold = defaultSlowResponseThreshold
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Schema == "" {
		cfg.Database.Schema = defaultSchema
	}
	if cfg.Database.Transaction.DefaultIsolation == "" {
		cfg.Database.Transaction.DefaultIsolation = defaultIsolation
	}
	if cfg.View.RateWindow <= 0 {
		cfg.View.RateWindow = defaultRateWindow
	}
	if cfg.View.LastViewCacheSize <= 0 {
		cfg.View.LastViewCacheSize = defaultLastViewCacheSize
	}
	if cfg.Dispatcher.Workers <= 0 {
		cfg.Dispatcher.Workers = defaultWorkers
	}
	if cfg.Dispatcher.QueueSize <= 0 {
		cfg.Dispatcher.QueueSize = defaultQueueSize
	}
	if cfg.Dispatcher.TaskTimeout <= 0 {
		cfg.Dispatcher.TaskTimeout = defaultTaskTimeout
	}
	if cfg.Ranking.RecentWindow <= 0 {
		cfg.Ranking.RecentWindow = defaultRecentWindow
	}
}

func toTxManagerConfig(db DatabaseConfig) txconfig.Config {
	tx := db.Transaction
	return txconfig.Config{
		DefaultIsolation: tx.DefaultIsolation,
		DefaultTimeout:   tx.DefaultTimeout,
		LockTimeout:      tx.LockTimeout,
		MaxRetries:       tx.MaxRetries,
		MetricsEnabled:   tx.MetricsEnabled,
	}
}
