package services_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/repositories/memstore"
	"github.com/bionicotaku/lingo-services-playlist/internal/services"
	"github.com/bionicotaku/lingo-services-playlist/internal/tasks/dispatcher"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *memstore.Store
	gate     *services.RateGate
	recorder *services.ViewRecorder
	ranker   *services.PopularityRanker
	pool     *dispatcher.Pool
	service  *services.PlaylistViewService
}

type envOption func(*envConfig)

type envConfig struct {
	window        time.Duration
	cacheSize     int
	recentWindow  time.Duration
	refreshRecent bool
	workers       int
}

func withCache(size int) envOption {
	return func(c *envConfig) { c.cacheSize = size }
}

func withRefreshRecent() envOption {
	return func(c *envConfig) { c.refreshRecent = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := envConfig{window: 60 * time.Second, recentWindow: time.Hour, workers: 8}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := log.NewStdLogger(io.Discard)

	store := memstore.New(logger)
	gate := services.NewRateGate(cfg.window, cfg.cacheSize)
	recorder := services.NewViewRecorder(store.Views(), store.Stats(), store.Playlists(), store, gate, logger)

	pool := dispatcher.NewPool(dispatcher.Config{Workers: cfg.workers, QueueSize: 2048, TaskTimeout: 5 * time.Second}, logger)
	require.NoError(t, pool.Start(context.Background()))
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })

	ranker := services.NewPopularityRanker(store.Views(), store.Stats(), pool, services.RankerConfig{
		RecentWindow:  cfg.recentWindow,
		RefreshRecent: cfg.refreshRecent,
	}, logger)
	svc := services.NewPlaylistViewService(recorder, ranker, gate, pool, store.Stats(), store.Playlists(), store, logger)

	return &testEnv{store: store, gate: gate, recorder: recorder, ranker: ranker, pool: pool, service: svc}
}

func (e *testEnv) playlist(title string) uuid.UUID {
	id := uuid.New()
	e.store.RegisterPlaylist(id, title)
	return id
}

func (e *testEnv) totalViews(t *testing.T, playlistID uuid.UUID) int64 {
	t.Helper()
	stats, err := e.store.Stats().ListByIDs(context.Background(), nil, []uuid.UUID{playlistID})
	require.NoError(t, err)
	if s := stats[playlistID]; s != nil {
		return s.TotalViews
	}
	return 0
}

// currentViews 不依赖 *testing.T，可在 Eventually 的条件函数中调用。
func (e *testEnv) currentViews(playlistID uuid.UUID) int64 {
	stats, err := e.store.Stats().ListByIDs(context.Background(), nil, []uuid.UUID{playlistID})
	if err != nil || stats[playlistID] == nil {
		return -1
	}
	return stats[playlistID].TotalViews
}

func (e *testEnv) eventCount(t *testing.T, playlistID uuid.UUID) int64 {
	t.Helper()
	counts, err := e.store.Views().CountSince(context.Background(), nil, []uuid.UUID{playlistID},
		time.Time{}, baseTime.Add(100*365*24*time.Hour))
	require.NoError(t, err)
	return counts[playlistID]
}

// recordN 由不同用户在同一时刻各浏览一次。
func (e *testEnv) recordN(t *testing.T, playlistID uuid.UUID, n int, at time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		outcome, err := e.recorder.Record(context.Background(), playlistID, uuid.New(), at)
		require.NoError(t, err)
		require.Equal(t, services.Accepted, outcome)
	}
}
