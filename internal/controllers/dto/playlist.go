// Package dto 定义 HTTP 请求/响应结构及其与视图对象之间的转换。
package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/vo"

	"github.com/google/uuid"
)

// ParsePlaylistID 解析 playlist_id 路径参数。
func ParsePlaylistID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid playlist_id: %w", err)
	}
	return id, nil
}

// ParseUserID 解析用户标识；空字符串返回 uuid.Nil 且不报错。
func ParseUserID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id: %w", err)
	}
	return id, nil
}

// GetPlaylistRequest 是 GET /api/v1/playlists/{playlist_id} 的入参。
type GetPlaylistRequest struct {
	PlaylistID string `json:"playlist_id"`
}

// PlaylistResponse 返回歌单浏览统计。
type PlaylistResponse struct {
	PlaylistID        string  `json:"playlist_id"`
	TotalViews        int64   `json:"total_views"`
	RecentViews       int64   `json:"recent_views"`
	RecentRefreshedAt *string `json:"recent_refreshed_at,omitempty"`
}

// NewPlaylistResponse 将统计视图对象转换为响应。
func NewPlaylistResponse(stats *vo.PlaylistStats) *PlaylistResponse {
	if stats == nil {
		return &PlaylistResponse{}
	}
	resp := &PlaylistResponse{
		PlaylistID:  stats.PlaylistID.String(),
		TotalViews:  stats.TotalViews,
		RecentViews: stats.RecentViews,
	}
	if stats.RecentRefreshedAt != nil {
		formatted := FormatTime(*stats.RecentRefreshedAt)
		resp.RecentRefreshedAt = &formatted
	}
	return resp
}

// RankPlaylistsRequest 是 POST /api/v1/playlists:rank 的请求体。
type RankPlaylistsRequest struct {
	Mode      string          `json:"mode"`
	At        string          `json:"at,omitempty"`
	Playlists []PlaylistBrief `json:"playlists"`
}

// PlaylistBrief 是歌单摘要的传输结构。
type PlaylistBrief struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    string `json:"image,omitempty"`
}

// RankPlaylistsResponse 返回排序后的歌单摘要。
type RankPlaylistsResponse struct {
	Mode      string          `json:"mode"`
	Playlists []PlaylistBrief `json:"playlists"`
}

// ToBriefs 校验并转换请求中的歌单摘要。
func (r *RankPlaylistsRequest) ToBriefs() ([]vo.PlaylistBrief, error) {
	out := make([]vo.PlaylistBrief, 0, len(r.Playlists))
	for i, b := range r.Playlists {
		id, err := uuid.Parse(b.ID)
		if err != nil {
			return nil, fmt.Errorf("playlists[%d]: invalid id: %w", i, err)
		}
		out = append(out, vo.PlaylistBrief{ID: id, Title: b.Title, Subtitle: b.Subtitle, Image: b.Image})
	}
	return out, nil
}

// ParseAt 解析可选的 at 字段（RFC3339），为空时返回零值。
func (r *RankPlaylistsRequest) ParseAt() (time.Time, error) {
	if strings.TrimSpace(r.At) == "" {
		return time.Time{}, nil
	}
	at, err := time.Parse(time.RFC3339Nano, r.At)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid at: %w", err)
	}
	return at, nil
}

// NewRankPlaylistsResponse 转换排序结果。
func NewRankPlaylistsResponse(mode string, briefs []vo.PlaylistBrief) *RankPlaylistsResponse {
	items := make([]PlaylistBrief, 0, len(briefs))
	for _, b := range briefs {
		items = append(items, PlaylistBrief{ID: b.ID.String(), Title: b.Title, Subtitle: b.Subtitle, Image: b.Image})
	}
	return &RankPlaylistsResponse{Mode: mode, Playlists: items}
}

// FormatTime 统一输出 RFC3339 UTC 时间。
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
