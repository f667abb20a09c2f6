// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
package po

import (
	"time"

	"github.com/google/uuid"
)

// PlaylistView 表示 playlist.playlist_views 中的一条浏览事件。
// (PlaylistID, UserID, OccurredAt) 唯一，写入后不可修改。
type PlaylistView struct {
	PlaylistID uuid.UUID
	UserID     uuid.UUID
	OccurredAt time.Time
}

// ViewerKey 返回 (user, playlist) 组合键，用于限流索引与锁表。
func (v PlaylistView) ViewerKey() string {
	return ViewerKey(v.UserID, v.PlaylistID)
}

// ViewerKey 构造 user/playlist 组合键。
func ViewerKey(userID, playlistID uuid.UUID) string {
	return userID.String() + "|" + playlistID.String()
}
