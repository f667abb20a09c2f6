// Package configloader 负责加载 configs/ 下的配置文件、应用环境变量覆盖并补全默认值。
package configloader

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/logger"

	txconfig "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	envConfPath       = "CONF_PATH"
	envServiceName    = "SERVICE_NAME"
	envServiceVersion = "SERVICE_VERSION"
	envAppEnv         = "APP_ENV"
	envDatabaseURL    = "DATABASE_URL"
	envPort           = "PORT"
)

var envFileNames = []string{".env.local", ".env"}

// ServiceMetadata 保存服务标识信息，供日志和指标组件使用。
type ServiceMetadata struct {
	Name        string
	Version     string
	Environment string
	InstanceID  string
}

// Loader 聚合加载结果，供下游 Wire 注入使用。
type Loader struct {
	ConfPath  string
	Bootstrap *Bootstrap
	Runtime   RuntimeConfig
	Service   ServiceMetadata
	LoggerCfg logger.Config
	TxConfig  txconfig.Config
}

// BuildError 捕获配置构建过程中的上下文错误信息。
type BuildError struct {
	Stage string
	Path  string
	Err   error
}

// Error 实现 error 接口，提供包含上下文的错误信息。
func (e BuildError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("config %s at %q: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap 暴露底层错误，支持 errors.Is/As 链式查询。
func (e BuildError) Unwrap() error {
	return e.Err
}

// ParseConfPath 解析 -conf 命令行参数，未指定时按 ResolveConfPath 规则回退。
func ParseConfPath(fs *flag.FlagSet, args []string) (string, error) {
	var confPath string
	fs.StringVar(&confPath, "conf", "", "config path, eg: -conf configs/config.yaml")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return ResolveConfPath(confPath), nil
}

// ResolveConfPath 应用回退规则确定要加载的配置目录/文件路径。
// 优先级：显式传入路径 > CONF_PATH 环境变量 > 默认路径。
func ResolveConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envConfPath); env != "" {
		return env
	}
	return defaultConfPath
}

// LoadBootstrap 加载配置并推导服务元信息。name/version 通常来自 -ldflags 注入，
// 为空时回退到环境变量与默认值。
func LoadBootstrap(confPath, name, version string) (*Loader, func(), error) {
	confPath = ResolveConfPath(confPath)
	loadEnvFiles(confPath)

	bootstrap, err := loadBootstrap(confPath)
	if err != nil {
		return nil, func() {}, err
	}
	rc := fromBootstrap(bootstrap)
	if err := validateRuntime(rc); err != nil {
		return nil, func() {}, BuildError{Stage: "validate", Path: confPath, Err: err}
	}

	meta := buildServiceMetadata(name, version)
	return &Loader{
		ConfPath:  confPath,
		Bootstrap: bootstrap,
		Runtime:   rc,
		Service:   meta,
		LoggerCfg: logger.Config{
			Service: meta.Name,
			Version: meta.Version,
			HostID:  meta.InstanceID,
			Env:     meta.Environment,
		},
		TxConfig: toTxManagerConfig(rc.Database),
	}, func() {}, nil
}

// loadBootstrap 加载 YAML、扫描到 Bootstrap、应用环境变量覆盖并做结构校验。
//
// 错误阶段：
//   - "load": 文件读取失败
//   - "scan": YAML 解析失败或类型不匹配
//   - "validate": 字段约束不满足
func loadBootstrap(confPath string) (*Bootstrap, error) {
	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return nil, BuildError{Stage: "load", Path: confPath, Err: err}
	}
	defer c.Close()

	var bc Bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, BuildError{Stage: "scan", Path: confPath, Err: err}
	}
	applyEnvOverrides(&bc)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&bc); err != nil {
		return nil, BuildError{Stage: "validate", Path: confPath, Err: err}
	}
	return &bc, nil
}

// validateRuntime 校验补全默认值后的跨字段约束。
func validateRuntime(rc RuntimeConfig) error {
	if rc.Database.Driver == DriverPostgres && rc.Database.DSN == "" {
		return errors.New("data.postgres.dsn is required for postgres driver (set DATABASE_URL)")
	}
	if rc.Database.MinOpenConns > 0 && rc.Database.MaxOpenConns > 0 && rc.Database.MinOpenConns > rc.Database.MaxOpenConns {
		return fmt.Errorf("data.postgres.min_open_conns (%d) exceeds max_open_conns (%d)", rc.Database.MinOpenConns, rc.Database.MaxOpenConns)
	}
	return nil
}

// applyEnvOverrides 应用环境变量覆盖配置文件中的特定字段。
//
//   - DATABASE_URL: 覆盖 data.postgres.dsn
//   - PORT: 覆盖 server.http.addr 的端口部分（保留 host）
//
// 环境变量为空时保留配置文件原值。
func applyEnvOverrides(bc *Bootstrap) {
	if bc == nil {
		return
	}
	if dsn := os.Getenv(envDatabaseURL); dsn != "" {
		bc.Data.Postgres.DSN = dsn
	}
	if port := os.Getenv(envPort); port != "" {
		bc.Server.HTTP.Addr = replacePort(bc.Server.HTTP.Addr, port)
	}
}

func buildServiceMetadata(name, version string) ServiceMetadata {
	if env := os.Getenv(envServiceName); env != "" {
		name = env
	}
	if name == "" {
		name = defaultServiceName
	}
	if env := os.Getenv(envServiceVersion); env != "" {
		version = env
	}
	if version == "" {
		version = defaultVersion
	}
	environment := os.Getenv(envAppEnv)
	if environment == "" {
		environment = defaultEnvironment
	}
	host, _ := os.Hostname()
	if host == "" {
		host = name
	}
	return ServiceMetadata{
		Name:        name,
		Version:     version,
		Environment: environment,
		InstanceID:  host,
	}
}

// loadEnvFiles best-effort 加载配置相关的 .env 文件，失败时忽略以保持幂等。
func loadEnvFiles(confPath string) {
	files := envFileCandidates(confPath)
	if len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}

// envFileCandidates 按 confPath 目录 -> 当前工作目录的顺序返回存在的 .env 文件。
// godotenv 不覆盖已设置的变量，因此列表靠前者优先。
func envFileCandidates(confPath string) []string {
	seen := make(map[string]struct{})
	var files []string
	for _, dir := range orderedDirs(confPath) {
		for _, name := range envFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			files = append(files, candidate)
			seen[candidate] = struct{}{}
		}
	}
	return files
}

func orderedDirs(confPath string) []string {
	var dirs []string
	appendUnique := func(path string) {
		if path == "" {
			return
		}
		clean := filepath.Clean(path)
		for _, existing := range dirs {
			if existing == clean {
				return
			}
		}
		dirs = append(dirs, clean)
	}
	if confPath != "" {
		if info, err := os.Stat(confPath); err == nil {
			if info.IsDir() {
				appendUnique(confPath)
			} else {
				appendUnique(filepath.Dir(confPath))
			}
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		appendUnique(cwd)
	}
	return dirs
}

// replacePort 替换地址中的端口部分，保留 host。
//   - "0.0.0.0:8000" -> "0.0.0.0:8080"
//   - "[::1]:8000" -> "[::1]:8080"
func replacePort(addr, newPort string) string {
	if addr == "" {
		return "0.0.0.0:" + newPort
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "0.0.0.0:" + newPort
	}
	return net.JoinHostPort(host, newPort)
}
