package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories/mappers"
	playlistsql "github.com/bionicotaku/lingo-services-playlist/internal/repositories/sqlc"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaylistViewRepository 维护 playlist.playlist_views 浏览事件日志。
type PlaylistViewRepository struct {
	db      *pgxpool.Pool
	queries *playlistsql.Queries
	log     *log.Helper
}

// NewPlaylistViewRepository 构造浏览事件仓储。
func NewPlaylistViewRepository(db *pgxpool.Pool, logger log.Logger) *PlaylistViewRepository {
	return &PlaylistViewRepository{
		db:      db,
		queries: playlistsql.New(db),
		log:     log.NewHelper(logger),
	}
}

func (r *PlaylistViewRepository) q(sess txmanager.Session) *playlistsql.Queries {
	if sess != nil && sess.Tx() != nil {
		return r.queries.WithTx(sess.Tx())
	}
	return r.queries
}

// LockViewer 在当前事务内获取 (user, playlist) 维度的 advisory 锁，事务结束自动释放。
// 必须在事务会话中调用，否则锁会在语句结束后立即释放。
func (r *PlaylistViewRepository) LockViewer(ctx context.Context, sess txmanager.Session, playlistID, userID uuid.UUID) error {
	if sess == nil || sess.Tx() == nil {
		return fmt.Errorf("lock playlist viewer: transaction session required")
	}
	if err := r.q(sess).LockPlaylistViewer(ctx, po.ViewerKey(userID, playlistID)); err != nil {
		return wrapStorageError("lock playlist viewer", err)
	}
	return nil
}

// Insert 追加一条浏览事件。
func (r *PlaylistViewRepository) Insert(ctx context.Context, sess txmanager.Session, view po.PlaylistView) error {
	if err := r.q(sess).InsertPlaylistView(ctx, mappers.BuildInsertPlaylistViewParams(view)); err != nil {
		return wrapStorageError("insert playlist view", err)
	}
	return nil
}

// Find 按过滤条件查询浏览事件，按 occurred_at 倒序返回。
func (r *PlaylistViewRepository) Find(ctx context.Context, sess txmanager.Session, filter ViewFilter) ([]po.PlaylistView, error) {
	if len(filter.PlaylistIDs) == 0 {
		return []po.PlaylistView{}, nil
	}
	rows, err := r.q(sess).ListPlaylistViews(ctx, playlistsql.ListPlaylistViewsParams{
		PlaylistIds: filter.PlaylistIDs,
		UserID:      mappers.ToPgUUID(filter.UserID),
		After:       mappers.ToPgTimestamptz(filter.After),
		Until:       mappers.ToPgTimestamptz(filter.Until),
		Before:      mappers.ToPgTimestamptz(filter.Before),
		MaxRows:     int32(filter.Limit),
	})
	if err != nil {
		return nil, wrapStorageError("list playlist views", err)
	}
	views := make([]po.PlaylistView, 0, len(rows))
	for _, row := range rows {
		views = append(views, mappers.PlaylistViewFromRow(row))
	}
	return views, nil
}

// CountSince 统计 (after, until] 区间内各歌单的浏览事件数，未出现的歌单不在结果中。
func (r *PlaylistViewRepository) CountSince(ctx context.Context, sess txmanager.Session, playlistIDs []uuid.UUID, after, until time.Time) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(playlistIDs))
	if len(playlistIDs) == 0 {
		return counts, nil
	}
	rows, err := r.q(sess).CountPlaylistViewsSince(ctx, playlistsql.CountPlaylistViewsSinceParams{
		PlaylistIds: playlistIDs,
		After:       mappers.ToPgTimestamptz(&after),
		Until:       mappers.ToPgTimestamptz(&until),
	})
	if err != nil {
		return nil, wrapStorageError("count playlist views", err)
	}
	for _, row := range rows {
		counts[row.PlaylistID] = row.ViewCount
	}
	return counts, nil
}
