package mappers

import (
	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	playlistsql "github.com/bionicotaku/lingo-services-playlist/internal/repositories/sqlc"
)

// PlaylistViewStatsFromRow 转换 sqlc 结果为计数视图。
func PlaylistViewStatsFromRow(row playlistsql.PlaylistPlaylistViewStat) *po.PlaylistViewStats {
	return &po.PlaylistViewStats{
		PlaylistID:        row.PlaylistID,
		TotalViews:        row.TotalViews,
		RecentViews:       row.RecentViews,
		RecentRefreshedAt: timestampPtr(row.RecentRefreshedAt),
		UpdatedAt:         mustTimestamp(row.UpdatedAt),
	}
}
