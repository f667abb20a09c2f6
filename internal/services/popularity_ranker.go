package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/vo"
	"github.com/bionicotaku/lingo-services-playlist/internal/tasks/dispatcher"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// RankMode 选择排序依据。
type RankMode int

const (
	// RankDefault 保持输入顺序。
	RankDefault RankMode = iota
	// RankTotal 按累计浏览量倒序。
	RankTotal
	// RankRecent 按最近窗口内浏览量倒序。
	RankRecent
)

// DefaultRecentWindow 是热度排序的滑动窗口。
const DefaultRecentWindow = time.Hour

func (m RankMode) String() string {
	switch m {
	case RankTotal:
		return "total"
	case RankRecent:
		return "recent"
	default:
		return "default"
	}
}

// Valid 判断是否为已知的排序模式。
func (m RankMode) Valid() bool {
	return m == RankDefault || m == RankTotal || m == RankRecent
}

// ParseRankMode 解析排序模式，空字符串视为默认模式。
func ParseRankMode(raw string) (RankMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "default", "none":
		return RankDefault, nil
	case "total", "view", "views":
		return RankTotal, nil
	case "recent", "hot":
		return RankRecent, nil
	default:
		return RankDefault, fmt.Errorf("unknown rank mode %q", raw)
	}
}

// PopularityRanker 按浏览统计对歌单排序，排序稳定。
type PopularityRanker struct {
	views         PlaylistViewRepo
	stats         PlaylistStatsRepo
	pool          *dispatcher.Pool
	window        time.Duration
	refreshRecent bool
	log           *log.Helper
}

// RankerConfig 控制热度窗口与回写。
type RankerConfig struct {
	RecentWindow  time.Duration
	RefreshRecent bool
}

// NewPopularityRanker 构造排序器。pool 为 nil 时不回写最近窗口计数。
func NewPopularityRanker(views PlaylistViewRepo, stats PlaylistStatsRepo, pool *dispatcher.Pool, cfg RankerConfig, logger log.Logger) *PopularityRanker {
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = DefaultRecentWindow
	}
	return &PopularityRanker{
		views:         views,
		stats:         stats,
		pool:          pool,
		window:        cfg.RecentWindow,
		refreshRecent: cfg.RefreshRecent && pool != nil,
		log:           log.NewHelper(logger),
	}
}

// Rank 返回排序后的新切片，不修改输入。缺少统计的歌单按 0 处理。
func (r *PopularityRanker) Rank(ctx context.Context, briefs []vo.PlaylistBrief, mode RankMode, at time.Time) ([]vo.PlaylistBrief, error) {
	if !mode.Valid() {
		return nil, errInvalidArgument(fmt.Sprintf("unsupported rank mode %d", int(mode)))
	}
	out := make([]vo.PlaylistBrief, len(briefs))
	copy(out, briefs)
	if len(out) < 2 && mode != RankRecent {
		return out, nil
	}

	var scores map[uuid.UUID]int64
	var err error
	switch mode {
	case RankDefault:
		return out, nil
	case RankTotal:
		scores, err = r.totalScores(ctx, out)
	case RankRecent:
		scores, err = r.recentScores(ctx, out, at)
	}
	if err != nil {
		return nil, translateReadError(err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i].ID] > scores[out[j].ID]
	})
	return out, nil
}

func (r *PopularityRanker) totalScores(ctx context.Context, briefs []vo.PlaylistBrief) (map[uuid.UUID]int64, error) {
	stats, err := r.stats.ListByIDs(ctx, nil, idsOf(briefs))
	if err != nil {
		return nil, err
	}
	scores := make(map[uuid.UUID]int64, len(stats))
	for id, s := range stats {
		if s != nil {
			scores[id] = s.TotalViews
		}
	}
	return scores, nil
}

// recentScores 每次读取时按 (at-window, at] 重新统计事件，窗口随 at 滑动，
// 过期事件自然不再计入。
func (r *PopularityRanker) recentScores(ctx context.Context, briefs []vo.PlaylistBrief, at time.Time) (map[uuid.UUID]int64, error) {
	ids := idsOf(briefs)
	if len(ids) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	counts, err := r.views.CountSince(ctx, nil, ids, at.Add(-r.window), at)
	if err != nil {
		return nil, err
	}
	if r.refreshRecent {
		r.scheduleRefresh(ctx, ids, counts, at)
	}
	return counts, nil
}

// scheduleRefresh 把计算结果异步回写到 recent_views 缓存列，失败只记录日志。
func (r *PopularityRanker) scheduleRefresh(ctx context.Context, ids []uuid.UUID, counts map[uuid.UUID]int64, at time.Time) {
	snapshot := make(map[uuid.UUID]int64, len(ids))
	for _, id := range ids {
		snapshot[id] = counts[id]
	}
	refreshedAt := at.UTC()
	r.pool.TrySubmit(ctx, "refresh_recent_views", func(taskCtx context.Context) (bool, error) {
		if _, err := r.stats.UpdateRecentViews(taskCtx, nil, snapshot, refreshedAt); err != nil {
			return false, fmt.Errorf("refresh recent views: %w", err)
		}
		return true, nil
	})
}

func idsOf(briefs []vo.PlaylistBrief) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(briefs))
	seen := make(map[uuid.UUID]struct{}, len(briefs))
	for _, b := range briefs {
		if _, ok := seen[b.ID]; ok {
			continue
		}
		seen[b.ID] = struct{}{}
		ids = append(ids, b.ID)
	}
	return ids
}

func translateReadError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrQueryTimeout.WithCause(err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return ErrViewStorageUnavailable.WithCause(err)
	}
}
