package configloader

import "time"

// RuntimeConfig 是加载并补全默认值后的运行时配置。
type RuntimeConfig struct {
	Server     ServerConfig
	Database   DatabaseConfig
	View       ViewConfig
	Dispatcher DispatcherConfig
	Ranking    RankingConfig
}

// ServerConfig 是 HTTP 服务运行参数。
type ServerConfig struct {
	Network               string
	Address               string
	Timeout               time.Duration
	SlowResponseThreshold time.Duration
}

// DatabaseConfig 是存储后端参数。
type DatabaseConfig struct {
	Driver            string
	DSN               string
	MaxOpenConns      int32
	MinOpenConns      int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	Schema            string
	PreparedStmts     bool
	Transaction       TransactionConfig
	MemoryPlaylists   []MemoryPlaylist
}

// TransactionConfig 是事务默认参数。
type TransactionConfig struct {
	DefaultIsolation string
	DefaultTimeout   time.Duration
	LockTimeout      time.Duration
	MaxRetries       int
	MetricsEnabled   *bool
}

// ViewConfig 是浏览限流参数。
type ViewConfig struct {
	RateWindow        time.Duration
	LastViewCacheSize int
}

// DispatcherConfig 是后台任务池参数。
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// RankingConfig 是热度排序参数。
type RankingConfig struct {
	RecentWindow  time.Duration
	RefreshRecent bool
}

// UseMemory 判断是否使用进程内存储。
func (c DatabaseConfig) UseMemory() bool {
	return c.Driver == DriverMemory
}
