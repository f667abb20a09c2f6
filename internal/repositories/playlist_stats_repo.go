package repositories

import (
	"context"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories/mappers"
	playlistsql "github.com/bionicotaku/lingo-services-playlist/internal/repositories/sqlc"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaylistStatsRepository 维护 playlist.playlist_view_stats 聚合计数。
type PlaylistStatsRepository struct {
	db      *pgxpool.Pool
	queries *playlistsql.Queries
	log     *log.Helper
}

// NewPlaylistStatsRepository 构造计数仓储。
func NewPlaylistStatsRepository(db *pgxpool.Pool, logger log.Logger) *PlaylistStatsRepository {
	return &PlaylistStatsRepository{
		db:      db,
		queries: playlistsql.New(db),
		log:     log.NewHelper(logger),
	}
}

func (r *PlaylistStatsRepository) q(sess txmanager.Session) *playlistsql.Queries {
	if sess != nil && sess.Tx() != nil {
		return r.queries.WithTx(sess.Tx())
	}
	return r.queries
}

// IncrementViews 以单条 upsert 语句累加 total_views，返回最新计数。
func (r *PlaylistStatsRepository) IncrementViews(ctx context.Context, sess txmanager.Session, playlistID uuid.UUID, delta int64) (*po.PlaylistViewStats, error) {
	row, err := r.q(sess).IncrementPlaylistViewStats(ctx, playlistsql.IncrementPlaylistViewStatsParams{
		PlaylistID: playlistID,
		Delta:      delta,
	})
	if err != nil {
		return nil, wrapStorageError("increment playlist view stats", err)
	}
	return mappers.PlaylistViewStatsFromRow(row), nil
}

// ListByIDs 批量读取计数；没有计数行的歌单不在结果中。
func (r *PlaylistStatsRepository) ListByIDs(ctx context.Context, sess txmanager.Session, playlistIDs []uuid.UUID) (map[uuid.UUID]*po.PlaylistViewStats, error) {
	out := make(map[uuid.UUID]*po.PlaylistViewStats, len(playlistIDs))
	if len(playlistIDs) == 0 {
		return out, nil
	}
	rows, err := r.q(sess).ListPlaylistViewStats(ctx, playlistIDs)
	if err != nil {
		return nil, wrapStorageError("list playlist view stats", err)
	}
	for _, row := range rows {
		out[row.PlaylistID] = mappers.PlaylistViewStatsFromRow(row)
	}
	return out, nil
}

// UpdateRecentViews 写回最近窗口计数缓存。refreshedAt 早于已有刷新时间的行会被跳过，
// 避免乱序的刷新覆盖较新的结果。
func (r *PlaylistStatsRepository) UpdateRecentViews(ctx context.Context, sess txmanager.Session, counts map[uuid.UUID]int64, refreshedAt time.Time) (int64, error) {
	if len(counts) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(counts))
	values := make([]int64, 0, len(counts))
	for id, c := range counts {
		ids = append(ids, id)
		values = append(values, c)
	}
	affected, err := r.q(sess).UpdatePlaylistRecentViews(ctx, playlistsql.UpdatePlaylistRecentViewsParams{
		RefreshedAt: mappers.ToPgTimestamptz(&refreshedAt),
		PlaylistIds: ids,
		ViewCounts:  values,
	})
	if err != nil {
		return 0, wrapStorageError("update playlist recent views", err)
	}
	return affected, nil
}
