// Package mappers 提供仓储层的模型转换工具，将存储层结果映射为领域实体。
package mappers

import (
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	playlistsql "github.com/bionicotaku/lingo-services-playlist/internal/repositories/sqlc"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// BuildInsertPlaylistViewParams 将浏览事件转换为 sqlc 插入参数。
func BuildInsertPlaylistViewParams(view po.PlaylistView) playlistsql.InsertPlaylistViewParams {
	return playlistsql.InsertPlaylistViewParams{
		PlaylistID: view.PlaylistID,
		UserID:     view.UserID,
		OccurredAt: ToPgTimestamptz(&view.OccurredAt),
	}
}

// PlaylistViewFromRow 转换 sqlc 行为浏览事件。
func PlaylistViewFromRow(row playlistsql.PlaylistPlaylistView) po.PlaylistView {
	return po.PlaylistView{
		PlaylistID: row.PlaylistID,
		UserID:     row.UserID,
		OccurredAt: mustTimestamp(row.OccurredAt),
	}
}

// ToPgTimestamptz 将可空时间转换为 pgtype.Timestamptz，统一使用 UTC。
func ToPgTimestamptz(value *time.Time) pgtype.Timestamptz {
	if value == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{
		Time:  value.UTC(),
		Valid: true,
	}
}

// ToPgUUID 将可空 UUID 转换为 pgtype.UUID。
func ToPgUUID(value *uuid.UUID) pgtype.UUID {
	if value == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *value, Valid: true}
}

func mustTimestamp(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time.UTC()
}

func timestampPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}
