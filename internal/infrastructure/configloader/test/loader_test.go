package configloader_test

import (
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONF_PATH", "DATABASE_URL", "PORT", "SERVICE_NAME", "SERVICE_VERSION", "APP_ENV"} {
		t.Setenv(key, "")
	}
}

func TestLoadBootstrapAppliesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
data:
  postgres:
    dsn: postgres://localhost:5432/playlist
`)
	loader, cleanup, err := configloader.LoadBootstrap(path, "", "")
	require.NoError(t, err)
	defer cleanup()

	rc := loader.Runtime
	require.Equal(t, "0.0.0.0:8000", rc.Server.Address)
	require.Equal(t, 5*time.Second, rc.Server.Timeout)
	require.Equal(t, 3*time.Second, rc.Server.SlowResponseThreshold)
	require.Equal(t, configloader.DriverPostgres, rc.Database.Driver)
	require.False(t, rc.Database.UseMemory())
	require.Equal(t, "playlist", rc.Database.Schema)
	require.Equal(t, 60*time.Second, rc.View.RateWindow)
	require.Equal(t, 100000, rc.View.LastViewCacheSize)
	require.Equal(t, 8, rc.Dispatcher.Workers)
	require.Equal(t, 1024, rc.Dispatcher.QueueSize)
	require.Equal(t, 5*time.Second, rc.Dispatcher.TaskTimeout)
	require.Equal(t, time.Hour, rc.Ranking.RecentWindow)
	require.True(t, rc.Ranking.RefreshRecent)

	require.Equal(t, "playlist", loader.Service.Name)
	require.Equal(t, "dev", loader.Service.Version)
	require.Equal(t, "development", loader.Service.Environment)
	require.Equal(t, loader.Service.Name, loader.LoggerCfg.Service)
}

func TestLoadBootstrapParsesDurationsAndMemoryDriver(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  http:
    addr: 127.0.0.1:9000
  slow_response_threshold: 1500ms
data:
  driver: memory
  memory:
    playlists:
      - id: 7f4c2c36-0c43-4b0e-9a43-63f0d6f9a5b1
        title: Morning Focus
view:
  rate_window: 2m
dispatcher:
  workers: 2
  task_timeout: 750ms
ranking:
  recent_window: 30m
  refresh_recent: false
`)
	loader, _, err := configloader.LoadBootstrap(path, "playlist-test", "v1.2.3")
	require.NoError(t, err)

	rc := loader.Runtime
	require.True(t, rc.Database.UseMemory())
	require.Len(t, rc.Database.MemoryPlaylists, 1)
	require.Equal(t, "Morning Focus", rc.Database.MemoryPlaylists[0].Title)
	require.Equal(t, "127.0.0.1:9000", rc.Server.Address)
	require.Equal(t, 1500*time.Millisecond, rc.Server.SlowResponseThreshold)
	require.Equal(t, 2*time.Minute, rc.View.RateWindow)
	require.Equal(t, 2, rc.Dispatcher.Workers)
	require.Equal(t, 750*time.Millisecond, rc.Dispatcher.TaskTimeout)
	require.Equal(t, 30*time.Minute, rc.Ranking.RecentWindow)
	require.False(t, rc.Ranking.RefreshRecent)
	require.Equal(t, "playlist-test", loader.Service.Name)
	require.Equal(t, "v1.2.3", loader.Service.Version)
}

func TestLoadBootstrapEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://override:5432/playlist")
	t.Setenv("PORT", "9090")
	t.Setenv("SERVICE_NAME", "playlist-env")
	t.Setenv("APP_ENV", "staging")
	path := writeConfig(t, `
server:
  http:
    addr: 0.0.0.0:8000
data:
  postgres:
    dsn: postgres://file:5432/playlist
`)
	loader, _, err := configloader.LoadBootstrap(path, "ignored", "")
	require.NoError(t, err)
	require.Equal(t, "postgres://override:5432/playlist", loader.Runtime.Database.DSN)
	require.Equal(t, "0.0.0.0:9090", loader.Runtime.Server.Address)
	require.Equal(t, "playlist-env", loader.Service.Name)
	require.Equal(t, "staging", loader.Service.Environment)
}

func TestLoadBootstrapValidationErrors(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"unknown driver": `
data:
  driver: redis
`,
		"postgres without dsn": `
data:
  driver: postgres
`,
		"bad memory playlist id": `
data:
  driver: memory
  memory:
    playlists:
      - id: nope
`,
		"min exceeds max": `
data:
  postgres:
    dsn: postgres://localhost/playlist
    max_open_conns: 2
    min_open_conns: 4
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := configloader.LoadBootstrap(writeConfig(t, body), "", "")
			require.Error(t, err)
			var buildErr configloader.BuildError
			require.True(t, errors.As(err, &buildErr))
			require.Equal(t, "validate", buildErr.Stage)
		})
	}
}

func TestLoadBootstrapScanError(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
view:
  rate_window: soon
`)
	_, _, err := configloader.LoadBootstrap(path, "", "")
	var buildErr configloader.BuildError
	require.True(t, errors.As(err, &buildErr))
	require.Equal(t, "scan", buildErr.Stage)
	require.Contains(t, err.Error(), path)
}

func TestLoadBootstrapMissingFile(t *testing.T) {
	clearEnv(t)
	_, _, err := configloader.LoadBootstrap(filepath.Join(t.TempDir(), "missing.yaml"), "", "")
	var buildErr configloader.BuildError
	require.True(t, errors.As(err, &buildErr))
	require.Equal(t, "load", buildErr.Stage)
}

func TestResolveConfPath(t *testing.T) {
	clearEnv(t)
	require.Equal(t, "configs", configloader.ResolveConfPath(""))
	t.Setenv("CONF_PATH", "/etc/playlist")
	require.Equal(t, "/etc/playlist", configloader.ResolveConfPath(""))
	require.Equal(t, "explicit.yaml", configloader.ResolveConfPath("explicit.yaml"))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	path, err := configloader.ParseConfPath(fs, []string{"-conf", "custom.yaml"})
	require.NoError(t, err)
	require.Equal(t, "custom.yaml", path)
}

func TestDurationUnmarshal(t *testing.T) {
	var cfg struct {
		A configloader.Duration `json:"a"`
		B configloader.Duration `json:"b"`
		C configloader.Duration `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"90s","b":1000000,"c":""}`), &cfg))
	require.Equal(t, 90*time.Second, cfg.A.Std())
	require.Equal(t, time.Millisecond, cfg.B.Std())
	require.Zero(t, cfg.C.Std())

	require.Error(t, json.Unmarshal([]byte(`{"a":"ninety"}`), &cfg))
	require.Error(t, json.Unmarshal([]byte(`{"a":true}`), &cfg))
}
