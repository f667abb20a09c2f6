package repositories

import (
	"context"
	"fmt"

	playlistsql "github.com/bionicotaku/lingo-services-playlist/internal/repositories/sqlc"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaylistRepository 提供歌单存在性检查。歌单本身由外部歌单管理服务写入。
type PlaylistRepository struct {
	db      *pgxpool.Pool
	queries *playlistsql.Queries
}

// NewPlaylistRepository 构造歌单仓储。
func NewPlaylistRepository(db *pgxpool.Pool) *PlaylistRepository {
	return &PlaylistRepository{
		db:      db,
		queries: playlistsql.New(db),
	}
}

// Exists 判断歌单是否存在。
func (r *PlaylistRepository) Exists(ctx context.Context, sess txmanager.Session, playlistID uuid.UUID) (bool, error) {
	queries := r.queries
	if sess != nil && sess.Tx() != nil {
		queries = queries.WithTx(sess.Tx())
	}
	ok, err := queries.PlaylistExists(ctx, playlistID)
	if err != nil {
		return false, fmt.Errorf("check playlist exists: %w", err)
	}
	return ok, nil
}

// Ping 检查连接池可用性，用于 readiness 探针。
func (r *PlaylistRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
