package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
)

// ViewRepository 是浏览事件日志的内存实现。
type ViewRepository struct{ store *Store }

// StatsRepository 是聚合计数的内存实现。
type StatsRepository struct{ store *Store }

// PlaylistRepository 是歌单存在性检查的内存实现。
type PlaylistRepository struct{ store *Store }

// Views 返回绑定到 s 的事件仓储。
func (s *Store) Views() *ViewRepository { return &ViewRepository{store: s} }

// Stats 返回绑定到 s 的计数仓储。
func (s *Store) Stats() *StatsRepository { return &StatsRepository{store: s} }

// Playlists 返回绑定到 s 的歌单仓储。
func (s *Store) Playlists() *PlaylistRepository { return &PlaylistRepository{store: s} }

// LockViewer 获取 (user, playlist) 锁并挂在会话上，事务结束时释放。
func (r *ViewRepository) LockViewer(ctx context.Context, sess txmanager.Session, playlistID, userID uuid.UUID) error {
	ms, ok := asSession(sess)
	if !ok {
		return ErrNoSession
	}
	unlock, err := r.store.locks.Lock(ctx, po.ViewerKey(userID, playlistID))
	if err != nil {
		return err
	}
	ms.unlocks = append(ms.unlocks, unlock)
	return nil
}

// Insert 暂存浏览事件；歌单不存在时立即失败。
func (r *ViewRepository) Insert(ctx context.Context, sess txmanager.Session, view po.PlaylistView) error {
	if hook := r.store.fault().BeforeInsert; hook != nil {
		if err := hook(view); err != nil {
			return err
		}
	}
	if _, ok := r.store.shard(view.PlaylistID); !ok {
		return errPlaylistMissing
	}
	return r.store.autocommit(ctx, sess, func(ms *session) error {
		for _, staged := range ms.views {
			if staged.PlaylistID == view.PlaylistID && keyOf(staged) == keyOf(view) {
				return errDuplicateView
			}
		}
		ms.views = append(ms.views, view)
		return nil
	})
}

// Find 返回已提交事件与本会话暂存事件中满足条件者，按 occurred_at 倒序。
func (r *ViewRepository) Find(_ context.Context, sess txmanager.Session, filter repositories.ViewFilter) ([]po.PlaylistView, error) {
	out := make([]po.PlaylistView, 0)
	for _, id := range dedupe(filter.PlaylistIDs) {
		sh, ok := r.store.shard(id)
		if !ok {
			continue
		}
		sh.mu.RLock()
		for _, v := range sh.views {
			if filter.Matches(v.PlaylistID, v.UserID, v.OccurredAt) {
				out = append(out, v)
			}
		}
		sh.mu.RUnlock()
	}
	if ms, ok := asSession(sess); ok {
		for _, v := range ms.views {
			if filter.Matches(v.PlaylistID, v.UserID, v.OccurredAt) {
				out = append(out, v)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CountSince 统计 (after, until] 区间内的事件数量。
func (r *ViewRepository) CountSince(_ context.Context, _ txmanager.Session, playlistIDs []uuid.UUID, after, until time.Time) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(playlistIDs))
	filter := repositories.ViewFilter{After: &after, Until: &until}
	for _, id := range dedupe(playlistIDs) {
		sh, ok := r.store.shard(id)
		if !ok {
			continue
		}
		var n int64
		sh.mu.RLock()
		for _, v := range sh.views {
			if filter.Matches(v.PlaylistID, v.UserID, v.OccurredAt) {
				n++
			}
		}
		sh.mu.RUnlock()
		if n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

// IncrementViews 暂存计数增量，返回的计数包含本会话尚未提交的增量。
func (r *StatsRepository) IncrementViews(ctx context.Context, sess txmanager.Session, playlistID uuid.UUID, delta int64) (*po.PlaylistViewStats, error) {
	if hook := r.store.fault().BeforeIncrement; hook != nil {
		if err := hook(playlistID); err != nil {
			return nil, err
		}
	}
	sh, ok := r.store.shard(playlistID)
	if !ok {
		return nil, errPlaylistMissing
	}
	var pending int64
	err := r.store.autocommit(ctx, sess, func(ms *session) error {
		ms.deltas[playlistID] += delta
		pending = ms.deltas[playlistID]
		return nil
	})
	if err != nil {
		return nil, err
	}
	sh.mu.RLock()
	out := snapshot(playlistID, sh.stats)
	sh.mu.RUnlock()
	if _, inTx := asSession(sess); inTx {
		out.TotalViews += pending
	}
	return out, nil
}

// ListByIDs 返回已提交的计数快照；没有计数的歌单不在结果中。
func (r *StatsRepository) ListByIDs(_ context.Context, _ txmanager.Session, playlistIDs []uuid.UUID) (map[uuid.UUID]*po.PlaylistViewStats, error) {
	out := make(map[uuid.UUID]*po.PlaylistViewStats, len(playlistIDs))
	for _, id := range dedupe(playlistIDs) {
		sh, ok := r.store.shard(id)
		if !ok {
			continue
		}
		sh.mu.RLock()
		if sh.stats != nil {
			out[id] = snapshot(id, sh.stats)
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// UpdateRecentViews 暂存最近窗口计数，提交时跳过刷新时间更新的行。
func (r *StatsRepository) UpdateRecentViews(ctx context.Context, sess txmanager.Session, counts map[uuid.UUID]int64, refreshedAt time.Time) (int64, error) {
	var affected int64
	err := r.store.autocommit(ctx, sess, func(ms *session) error {
		if ms.recent == nil {
			ms.recent = make(map[uuid.UUID]int64, len(counts))
		}
		for id, c := range counts {
			if _, ok := r.store.shard(id); !ok {
				continue
			}
			ms.recent[id] = c
			affected++
		}
		ms.recentAt = refreshedAt
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Exists 判断歌单是否已登记。
func (r *PlaylistRepository) Exists(_ context.Context, _ txmanager.Session, playlistID uuid.UUID) (bool, error) {
	_, ok := r.store.shard(playlistID)
	return ok, nil
}

// Ping 内存存储始终可用。
func (r *PlaylistRepository) Ping(context.Context) error { return nil }

func snapshot(playlistID uuid.UUID, stats *po.PlaylistViewStats) *po.PlaylistViewStats {
	if stats == nil {
		return &po.PlaylistViewStats{PlaylistID: playlistID}
	}
	cp := *stats
	if stats.RecentRefreshedAt != nil {
		at := *stats.RecentRefreshedAt
		cp.RecentRefreshedAt = &at
	}
	return &cp
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
