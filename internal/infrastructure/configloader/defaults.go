package configloader

import "time"

const (
	// defaultConfPath is the fallback configuration directory when no overrides are provided.
	defaultConfPath = "configs"
	// defaultEnvironment is used when APP_ENV is missing.
	defaultEnvironment = "development"
	defaultServiceName = "playlist"
	defaultVersion     = "dev"

	// DriverPostgres selects the PostgreSQL repositories.
	DriverPostgres = "postgres"
	// DriverMemory selects the in-process store.
	DriverMemory = "memory"

	defaultHTTPAddr              = "0.0.0.0:8000"
	defaultHTTPTimeout           = 5 * time.Second
	defaultSlowResponseThreshold = 3 * time.Second
	defaultSchema                = "playlist"
	defaultIsolation             = "read_committed"
	defaultRateWindow            = 60 * time.Second
	defaultLastViewCacheSize     = 100000
	defaultWorkers               = 8
	defaultQueueSize             = 1024
	defaultTaskTimeout           = 5 * time.Second
	defaultRecentWindow          = time.Hour
)
