package services

import (
	"context"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
)

// PlaylistViewRepo 定义浏览事件日志所需的访问接口。
type PlaylistViewRepo interface {
	LockViewer(ctx context.Context, sess txmanager.Session, playlistID, userID uuid.UUID) error
	Insert(ctx context.Context, sess txmanager.Session, view po.PlaylistView) error
	Find(ctx context.Context, sess txmanager.Session, filter repositories.ViewFilter) ([]po.PlaylistView, error)
	CountSince(ctx context.Context, sess txmanager.Session, playlistIDs []uuid.UUID, after, until time.Time) (map[uuid.UUID]int64, error)
}

// PlaylistStatsRepo 定义聚合计数所需的访问接口。
type PlaylistStatsRepo interface {
	IncrementViews(ctx context.Context, sess txmanager.Session, playlistID uuid.UUID, delta int64) (*po.PlaylistViewStats, error)
	ListByIDs(ctx context.Context, sess txmanager.Session, playlistIDs []uuid.UUID) (map[uuid.UUID]*po.PlaylistViewStats, error)
	UpdateRecentViews(ctx context.Context, sess txmanager.Session, counts map[uuid.UUID]int64, refreshedAt time.Time) (int64, error)
}

// PlaylistRepo 定义歌单存在性检查接口。歌单由外部服务维护。
type PlaylistRepo interface {
	Exists(ctx context.Context, sess txmanager.Session, playlistID uuid.UUID) (bool, error)
	Ping(ctx context.Context) error
}
