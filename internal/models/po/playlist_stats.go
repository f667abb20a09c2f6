package po

import (
	"time"

	"github.com/google/uuid"
)

// PlaylistViewStats 表示 playlist.playlist_view_stats 记录。
//
// TotalViews 只由浏览写入单元递增；RecentViews 为最近窗口的缓存值，
// 可随时由浏览事件重新计算。
type PlaylistViewStats struct {
	PlaylistID        uuid.UUID
	TotalViews        int64
	RecentViews       int64
	RecentRefreshedAt *time.Time
	UpdatedAt         time.Time
}
