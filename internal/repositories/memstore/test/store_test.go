package memstore_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories/memstore"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*memstore.Store, uuid.UUID) {
	t.Helper()
	store := memstore.New(log.NewStdLogger(io.Discard))
	id := uuid.New()
	store.RegisterPlaylist(id, "focus")
	return store, id
}

func TestStoreCommitAppliesEventAndCounter(t *testing.T) {
	store, playlist := newStore(t)
	ctx := context.Background()
	user := uuid.New()

	err := store.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		require.NoError(t, store.Views().LockViewer(txCtx, sess, playlist, user))
		require.Equal(t, 1, store.LockedKeys())
		require.NoError(t, store.Views().Insert(txCtx, sess, po.PlaylistView{PlaylistID: playlist, UserID: user, OccurredAt: t0}))
		stats, err := store.Stats().IncrementViews(txCtx, sess, playlist, 1)
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.TotalViews)

		// 会话内可见暂存事件，会话外不可见。
		staged, err := store.Views().Find(txCtx, sess, repositories.ViewFilter{PlaylistIDs: []uuid.UUID{playlist}})
		require.NoError(t, err)
		require.Len(t, staged, 1)
		committed, err := store.Views().Find(txCtx, nil, repositories.ViewFilter{PlaylistIDs: []uuid.UUID{playlist}})
		require.NoError(t, err)
		require.Empty(t, committed)
		return nil
	})
	require.NoError(t, err)
	require.Zero(t, store.LockedKeys())

	stats, err := store.Stats().ListByIDs(ctx, nil, []uuid.UUID{playlist})
	require.NoError(t, err)
	require.Equal(t, int64(1), stats[playlist].TotalViews)
	views, err := store.Views().Find(ctx, nil, repositories.ViewFilter{PlaylistIDs: []uuid.UUID{playlist}})
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestStoreRollbackDiscardsEverything(t *testing.T) {
	store, playlist := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		require.NoError(t, store.Views().LockViewer(txCtx, sess, playlist, uuid.New()))
		require.NoError(t, store.Views().Insert(txCtx, sess, po.PlaylistView{PlaylistID: playlist, UserID: uuid.New(), OccurredAt: t0}))
		_, err := store.Stats().IncrementViews(txCtx, sess, playlist, 1)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, store.LockedKeys())

	stats, err := store.Stats().ListByIDs(ctx, nil, []uuid.UUID{playlist})
	require.NoError(t, err)
	require.Empty(t, stats)
	counts, err := store.Views().CountSince(ctx, nil, []uuid.UUID{playlist}, t0.Add(-time.Hour), t0.Add(time.Hour))
	require.NoError(t, err)
	require.Zero(t, counts[playlist])
}

func TestStoreCommitFaultDiscardsWrites(t *testing.T) {
	store, playlist := newStore(t)
	store.SetFaults(&memstore.Faults{BeforeCommit: func() error { return repositories.ErrStorageConflict }})

	err := store.WithinTx(context.Background(), txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		_, err := store.Stats().IncrementViews(txCtx, sess, playlist, 1)
		return err
	})
	require.True(t, repositories.IsConflict(err))

	stats, err := store.Stats().ListByIDs(context.Background(), nil, []uuid.UUID{playlist})
	require.NoError(t, err)
	require.Empty(t, stats)
}

func TestStoreDuplicateViewIsConflict(t *testing.T) {
	store, playlist := newStore(t)
	view := po.PlaylistView{PlaylistID: playlist, UserID: uuid.New(), OccurredAt: t0}

	require.NoError(t, store.Views().Insert(context.Background(), nil, view))
	err := store.Views().Insert(context.Background(), nil, view)
	require.True(t, repositories.IsConflict(err))
}

func TestStoreUnknownPlaylist(t *testing.T) {
	store, _ := newStore(t)
	missing := uuid.New()

	err := store.Views().Insert(context.Background(), nil, po.PlaylistView{PlaylistID: missing, UserID: uuid.New(), OccurredAt: t0})
	require.ErrorIs(t, err, repositories.ErrPlaylistNotFound)

	_, err = store.Stats().IncrementViews(context.Background(), nil, missing, 1)
	require.ErrorIs(t, err, repositories.ErrPlaylistNotFound)

	ok, err := store.Playlists().Exists(context.Background(), nil, missing)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreReadOnlySessionRejectsWrites(t *testing.T) {
	store, playlist := newStore(t)

	err := store.WithinReadOnlyTx(context.Background(), txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		require.Nil(t, sess.Tx())
		_, err := store.Stats().IncrementViews(txCtx, sess, playlist, 1)
		return err
	})
	require.Error(t, err)
}

func TestStoreLockViewerRequiresSession(t *testing.T) {
	store, playlist := newStore(t)
	err := store.Views().LockViewer(context.Background(), nil, playlist, uuid.New())
	require.ErrorIs(t, err, memstore.ErrNoSession)
}

func TestStoreFindFiltersAndOrders(t *testing.T) {
	store, playlist := newStore(t)
	ctx := context.Background()
	user := uuid.New()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Views().Insert(ctx, nil, po.PlaylistView{PlaylistID: playlist, UserID: user, OccurredAt: t0.Add(time.Duration(i) * time.Minute)}))
	}
	require.NoError(t, store.Views().Insert(ctx, nil, po.PlaylistView{PlaylistID: playlist, UserID: uuid.New(), OccurredAt: t0.Add(10 * time.Minute)}))

	after := t0.Add(time.Minute)
	until := t0.Add(3 * time.Minute)
	views, err := store.Views().Find(ctx, nil, repositories.ViewFilter{
		PlaylistIDs: []uuid.UUID{playlist},
		UserID:      &user,
		After:       &after,
		Until:       &until,
	})
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.True(t, views[0].OccurredAt.Equal(t0.Add(3*time.Minute)))
	require.True(t, views[1].OccurredAt.Equal(t0.Add(2*time.Minute)))

	latest, err := store.Views().Find(ctx, nil, repositories.ViewFilter{PlaylistIDs: []uuid.UUID{playlist}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.True(t, latest[0].OccurredAt.Equal(t0.Add(10*time.Minute)))

	empty, err := store.Views().Find(ctx, nil, repositories.ViewFilter{})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestStoreUpdateRecentViewsIsMonotone(t *testing.T) {
	store, playlist := newStore(t)
	ctx := context.Background()

	n, err := store.Stats().UpdateRecentViews(ctx, nil, map[uuid.UUID]int64{playlist: 7, uuid.New(): 1}, t0.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = store.Stats().UpdateRecentViews(ctx, nil, map[uuid.UUID]int64{playlist: 2}, t0)
	require.NoError(t, err)

	stats, err := store.Stats().ListByIDs(ctx, nil, []uuid.UUID{playlist})
	require.NoError(t, err)
	require.Equal(t, int64(7), stats[playlist].RecentViews)
	require.True(t, stats[playlist].RecentRefreshedAt.Equal(t0.Add(time.Minute)))
	require.Zero(t, stats[playlist].TotalViews)
}

func TestProvideStoreSeedsPlaylists(t *testing.T) {
	id := uuid.New()
	store, err := memstore.ProvideStore(configloader.DatabaseConfig{
		Driver:          configloader.DriverMemory,
		MemoryPlaylists: []configloader.MemoryPlaylist{{ID: id.String(), Title: "seeded"}},
	}, log.NewStdLogger(io.Discard))
	require.NoError(t, err)

	ok, err := store.Playlists().Exists(context.Background(), nil, id)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = memstore.ProvideStore(configloader.DatabaseConfig{
		MemoryPlaylists: []configloader.MemoryPlaylist{{ID: "not-a-uuid"}},
	}, log.NewStdLogger(io.Discard))
	require.Error(t, err)
}
