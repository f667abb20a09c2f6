package configloader

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 支持从 YAML/JSON 中以 "5s"、"1h" 字符串或纳秒整数解析时长。
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler。
func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*d = 0
	case float64:
		*d = Duration(time.Duration(v))
	case string:
		if v == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration type %T", raw)
	}
	return nil
}

// MarshalJSON 实现 json.Marshaler。
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std 返回标准库时长。
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Bootstrap 对应 configs/config.yaml 的顶层结构。
type Bootstrap struct {
	Server     Server     `json:"server"`
	Data       Data       `json:"data"`
	View       View       `json:"view"`
	Dispatcher Dispatcher `json:"dispatcher"`
	Ranking    Ranking    `json:"ranking"`
}

// Server 描述 HTTP 服务配置。
type Server struct {
	HTTP                  HTTP     `json:"http"`
	SlowResponseThreshold Duration `json:"slow_response_threshold"`
}

// HTTP 描述 HTTP 监听配置。
type HTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr" validate:"omitempty,hostname_port"`
	Timeout Duration `json:"timeout"`
}

// Data 描述存储后端选择与连接参数。
type Data struct {
	Driver   string   `json:"driver" validate:"omitempty,oneof=postgres memory"`
	Postgres Postgres `json:"postgres"`
	Memory   Memory   `json:"memory"`
}

// Memory 描述进程内存储的初始歌单。
type Memory struct {
	Playlists []MemoryPlaylist `json:"playlists" validate:"dive"`
}

// MemoryPlaylist 是预置到内存存储的歌单。
type MemoryPlaylist struct {
	ID    string `json:"id" validate:"required,uuid"`
	Title string `json:"title"`
}

// Postgres 描述 PostgreSQL 连接池配置。
type Postgres struct {
	DSN                      string      `json:"dsn"`
	MaxOpenConns             int32       `json:"max_open_conns" validate:"gte=0"`
	MinOpenConns             int32       `json:"min_open_conns" validate:"gte=0"`
	MaxConnLifetime          Duration    `json:"max_conn_lifetime"`
	MaxConnIdleTime          Duration    `json:"max_conn_idle_time"`
	HealthCheckPeriod        Duration    `json:"health_check_period"`
	Schema                   string      `json:"schema"`
	EnablePreparedStatements bool        `json:"enable_prepared_statements"`
	Transaction              Transaction `json:"transaction"`
}

// Transaction 描述 txmanager 默认参数。
type Transaction struct {
	DefaultIsolation string   `json:"default_isolation" validate:"omitempty,oneof=read_committed repeatable_read serializable"`
	DefaultTimeout   Duration `json:"default_timeout"`
	LockTimeout      Duration `json:"lock_timeout"`
	MaxRetries       int      `json:"max_retries" validate:"gte=0"`
	MetricsEnabled   *bool    `json:"metrics_enabled"`
}

// View 描述浏览限流配置。
type View struct {
	RateWindow        Duration `json:"rate_window"`
	LastViewCacheSize int      `json:"last_view_cache_size" validate:"gte=0"`
}

// Dispatcher 描述后台任务池配置。
type Dispatcher struct {
	Workers     int      `json:"workers" validate:"gte=0"`
	QueueSize   int      `json:"queue_size" validate:"gte=0"`
	TaskTimeout Duration `json:"task_timeout"`
}

// Ranking 描述热度排序配置。
type Ranking struct {
	RecentWindow  Duration `json:"recent_window"`
	RefreshRecent *bool    `json:"refresh_recent"`
}
