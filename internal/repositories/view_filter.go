package repositories

import (
	"time"

	"github.com/google/uuid"
)

// ViewFilter 描述浏览事件查询条件。
//
// After 为开区间下界（occurred_at > After），Until 为闭区间上界（occurred_at <= Until），
// Before 为开区间上界（occurred_at < Before）。限流复查使用 (at-window, at+window)。
// Limit 为 0 表示不限制。
type ViewFilter struct {
	PlaylistIDs []uuid.UUID
	UserID      *uuid.UUID
	After       *time.Time
	Until       *time.Time
	Before      *time.Time
	Limit       int
}

// Matches 判断事件是否满足过滤条件，供内存实现复用。
func (f ViewFilter) Matches(playlistID, userID uuid.UUID, occurredAt time.Time) bool {
	if len(f.PlaylistIDs) > 0 {
		found := false
		for _, id := range f.PlaylistIDs {
			if id == playlistID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.UserID != nil && *f.UserID != userID {
		return false
	}
	if f.After != nil && !occurredAt.After(*f.After) {
		return false
	}
	if f.Until != nil && occurredAt.After(*f.Until) {
		return false
	}
	if f.Before != nil && !occurredAt.Before(*f.Before) {
		return false
	}
	return true
}
