// Package vo 定义视图对象（View Objects），用于向上层传递业务数据。
// VO 对象由 Service 层返回，经 Controller 层转换为 API 响应，隔离内部数据结构。
package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	"github.com/google/uuid"
)

// PlaylistBrief 是列表页展示用的歌单摘要，排序只依赖 ID。
type PlaylistBrief struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Image    string    `json:"image"`
}

// PlaylistStats 是歌单详情接口返回的浏览统计。
type PlaylistStats struct {
	PlaylistID        uuid.UUID  `json:"playlist_id"`
	TotalViews        int64      `json:"total_views"`
	RecentViews       int64      `json:"recent_views"`
	RecentRefreshedAt *time.Time `json:"recent_refreshed_at,omitempty"`
}

// NewPlaylistStats 将持久化统计转换为视图对象；stats 为 nil 时返回零值统计。
func NewPlaylistStats(playlistID uuid.UUID, stats *po.PlaylistViewStats) *PlaylistStats {
	out := &PlaylistStats{PlaylistID: playlistID}
	if stats == nil {
		return out
	}
	out.TotalViews = stats.TotalViews
	out.RecentViews = stats.RecentViews
	out.RecentRefreshedAt = stats.RecentRefreshedAt
	return out
}
