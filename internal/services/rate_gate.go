package services

import (
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultRateWindow 是同一用户重复浏览同一歌单的最小间隔。
const DefaultRateWindow = 60 * time.Second

// RateGate 判断一次浏览是否计入。
//
// 已计入浏览与 at 的距离严格小于 window 时阻塞，前后两侧相同：恰好相距 window 的浏览不阻塞。
// 异步任务不保证按 at 顺序执行，较晚时间的浏览可能先提交，因此必须同时检查 at 之后的事件。
// 权威判断由 ViewRecorder 在事务内完成；本地缓存只用于提前拒绝明显重复的请求，
// 可能过期（例如进程重启或多实例部署），因此缓存未命中不代表可以计入。
type RateGate struct {
	window time.Duration
	recent *expirable.LRU[string, time.Time]
}

// NewRateGate 构造限流判定器。cacheSize <= 0 时关闭本地缓存。
func NewRateGate(window time.Duration, cacheSize int) *RateGate {
	if window <= 0 {
		window = DefaultRateWindow
	}
	g := &RateGate{window: window}
	if cacheSize > 0 {
		g.recent = expirable.NewLRU[string, time.Time](cacheSize, nil, window)
	}
	return g
}

// Window 返回窗口大小。
func (g *RateGate) Window() time.Duration {
	return g.window
}

// WindowStart 返回 at 对应窗口的开区间下界。
func (g *RateGate) WindowStart(at time.Time) time.Time {
	return at.Add(-g.window)
}

// WindowEnd 返回 at 对应窗口的开区间上界。
func (g *RateGate) WindowEnd(at time.Time) time.Time {
	return at.Add(g.window)
}

// Eligible 判断给定已计入浏览时间下 at 是否可计入，窗口为 (at-window, at+window)。
func (g *RateGate) Eligible(history []time.Time, at time.Time) bool {
	start, end := g.WindowStart(at), g.WindowEnd(at)
	for _, ts := range history {
		if ts.After(start) && ts.Before(end) {
			return false
		}
	}
	return true
}

// PreCheck 仅查询本地缓存。返回 false 表示缓存中存在窗口内的已计入浏览。
func (g *RateGate) PreCheck(userID, playlistID uuid.UUID, at time.Time) bool {
	if g.recent == nil {
		return true
	}
	last, ok := g.recent.Get(po.ViewerKey(userID, playlistID))
	if !ok {
		return true
	}
	return g.Eligible([]time.Time{last}, at)
}

// Remember 在浏览提交后记录最新计入时间，只会前移。
func (g *RateGate) Remember(view po.PlaylistView) {
	if g.recent == nil {
		return
	}
	key := view.ViewerKey()
	if last, ok := g.recent.Peek(key); ok && last.After(view.OccurredAt) {
		return
	}
	g.recent.Add(key, view.OccurredAt)
}
