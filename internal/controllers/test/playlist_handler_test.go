package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/controllers"
	"github.com/bionicotaku/lingo-services-playlist/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories/memstore"
	"github.com/bionicotaku/lingo-services-playlist/internal/services"
	"github.com/bionicotaku/lingo-services-playlist/internal/tasks/dispatcher"

	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type handlerEnv struct {
	store *memstore.Store
	srv   *khttp.Server
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	logger := log.NewStdLogger(io.Discard)

	store := memstore.New(logger)
	gate := services.NewRateGate(time.Minute, 1024)
	recorder := services.NewViewRecorder(store.Views(), store.Stats(), store.Playlists(), store, gate, logger)
	pool := dispatcher.NewPool(dispatcher.Config{Workers: 2, QueueSize: 64}, logger)
	require.NoError(t, pool.Start(context.Background()))
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })
	ranker := services.NewPopularityRanker(store.Views(), store.Stats(), pool, services.RankerConfig{}, logger)
	svc := services.NewPlaylistViewService(recorder, ranker, gate, pool, store.Stats(), store.Playlists(), store, logger)

	srv := khttp.NewServer()
	controllers.NewPlaylistHandler(svc, controllers.NewBaseHandler(controllers.HandlerTimeouts{}), logger).RegisterRoutes(srv)
	controllers.NewHealthHandler(svc).RegisterRoutes(srv)
	return &handlerEnv{store: store, srv: srv}
}

func (e *handlerEnv) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *handlerEnv) total(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	stats, err := e.store.Stats().ListByIDs(context.Background(), nil, []uuid.UUID{id})
	require.NoError(t, err)
	if s := stats[id]; s != nil {
		return s.TotalViews
	}
	return 0
}

func TestGetPlaylistRegistersViewAsynchronously(t *testing.T) {
	env := newHandlerEnv(t)
	playlist := uuid.New()
	env.store.RegisterPlaylist(playlist, "focus")
	user := uuid.New().String()

	rec := env.do(t, http.MethodGet, "/api/v1/playlists/"+playlist.String(), nil, map[string]string{"x-md-global-user-id": user})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.PlaylistResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, playlist.String(), resp.PlaylistID)

	require.Eventually(t, func() bool {
		stats, err := env.store.Stats().ListByIDs(context.Background(), nil, []uuid.UUID{playlist})
		return err == nil && stats[playlist] != nil && stats[playlist].TotalViews == 1
	}, 2*time.Second, 10*time.Millisecond)

	// 同一用户窗口内再次访问不计数，但响应正常。
	rec = env.do(t, http.MethodGet, "/api/v1/playlists/"+playlist.String(), nil, map[string]string{"x-md-global-user-id": user})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.TotalViews)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int64(1), env.total(t, playlist))
}

func TestGetPlaylistWithoutUserDoesNotCount(t *testing.T) {
	env := newHandlerEnv(t)
	playlist := uuid.New()
	env.store.RegisterPlaylist(playlist, "focus")

	rec := env.do(t, http.MethodGet, "/api/v1/playlists/"+playlist.String(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v1/playlists/"+playlist.String(), nil, map[string]string{"x-md-global-user-id": "not-a-uuid"})
	require.Equal(t, http.StatusOK, rec.Code)
	time.Sleep(50 * time.Millisecond)
	require.Zero(t, env.total(t, playlist))
}

func TestGetPlaylistErrors(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/playlists/"+uuid.New().String(), nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/playlists/abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankPlaylistsEndpoint(t *testing.T) {
	env := newHandlerEnv(t)
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	for _, id := range []uuid.UUID{a, b, c} {
		env.store.RegisterPlaylist(id, id.String())
	}
	bump := func(id uuid.UUID, n int) {
		for i := 0; i < n; i++ {
			_, err := env.store.Stats().IncrementViews(context.Background(), nil, id, 1)
			require.NoError(t, err)
		}
	}
	bump(a, 5)
	bump(b, 9)
	bump(c, 1)

	body := dto.RankPlaylistsRequest{
		Mode: "total",
		Playlists: []dto.PlaylistBrief{
			{ID: a.String(), Title: "A"},
			{ID: b.String(), Title: "B"},
			{ID: c.String(), Title: "C"},
		},
	}
	rec := env.do(t, http.MethodPost, "/api/v1/playlists:rank", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.RankPlaylistsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "total", resp.Mode)
	require.Len(t, resp.Playlists, 3)
	require.Equal(t, []string{"B", "A", "C"}, []string{resp.Playlists[0].Title, resp.Playlists[1].Title, resp.Playlists[2].Title})

	body.Mode = "loudest"
	rec = env.do(t, http.MethodPost, "/api/v1/playlists:rank", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
