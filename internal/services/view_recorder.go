package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// Outcome 表示一次浏览记账的结果。
type Outcome int

const (
	// Rejected 窗口内已有计入的浏览。
	Rejected Outcome = iota
	// Accepted 浏览已写入事件日志并累加计数。
	Accepted
)

func (o Outcome) String() string {
	if o == Accepted {
		return "accepted"
	}
	return "rejected"
}

// conflictRetries 是存储冲突时整体重试（含窗口复查）的次数。
const conflictRetries = 1

// ViewRecorder 在一个事务内完成"复查窗口 + 写事件 + 累加计数"。
type ViewRecorder struct {
	views     PlaylistViewRepo
	stats     PlaylistStatsRepo
	playlists PlaylistRepo
	txManager txmanager.Manager
	gate      *RateGate
	metrics   *viewMetrics
	log       *log.Helper
}

// NewViewRecorder 构造浏览记账器。
func NewViewRecorder(views PlaylistViewRepo, stats PlaylistStatsRepo, playlists PlaylistRepo, tx txmanager.Manager, gate *RateGate, logger log.Logger) *ViewRecorder {
	helper := log.NewHelper(logger)
	return &ViewRecorder{
		views:     views,
		stats:     stats,
		playlists: playlists,
		txManager: tx,
		gate:      gate,
		metrics:   newViewMetrics(helper),
		log:       helper,
	}
}

// Record 记录一次浏览。被限流时返回 (Rejected, nil)。
func (r *ViewRecorder) Record(ctx context.Context, playlistID, userID uuid.UUID, at time.Time) (Outcome, error) {
	start := time.Now()
	view := po.PlaylistView{PlaylistID: playlistID, UserID: userID, OccurredAt: at.UTC()}

	var (
		outcome Outcome
		err     error
	)
	for attempt := 0; attempt <= conflictRetries; attempt++ {
		outcome, err = r.recordOnce(ctx, view)
		if err == nil || !repositories.IsConflict(err) {
			break
		}
		r.log.WithContext(ctx).Debugf("record view conflict, retrying: playlist_id=%s user_id=%s attempt=%d", playlistID, userID, attempt+1)
	}
	if err != nil {
		r.metrics.recordFailure(ctx, start)
		return Rejected, r.translate(ctx, view, err)
	}

	if outcome == Accepted {
		r.gate.Remember(view)
		r.metrics.recordAccepted(ctx, start)
	} else {
		r.metrics.recordRejected(ctx, start)
	}
	return outcome, nil
}

func (r *ViewRecorder) recordOnce(ctx context.Context, view po.PlaylistView) (Outcome, error) {
	outcome := Rejected
	err := r.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		exists, err := r.playlists.Exists(txCtx, sess, view.PlaylistID)
		if err != nil {
			return err
		}
		if !exists {
			return repositories.ErrPlaylistNotFound
		}
		if err := r.views.LockViewer(txCtx, sess, view.PlaylistID, view.UserID); err != nil {
			return err
		}

		after := r.gate.WindowStart(view.OccurredAt)
		before := r.gate.WindowEnd(view.OccurredAt)
		userID := view.UserID
		nearby, err := r.views.Find(txCtx, sess, repositories.ViewFilter{
			PlaylistIDs: []uuid.UUID{view.PlaylistID},
			UserID:      &userID,
			After:       &after,
			Before:      &before,
			Limit:       1,
		})
		if err != nil {
			return err
		}
		history := make([]time.Time, 0, len(nearby))
		for _, v := range nearby {
			history = append(history, v.OccurredAt)
		}
		if !r.gate.Eligible(history, view.OccurredAt) {
			return nil
		}

		if err := r.views.Insert(txCtx, sess, view); err != nil {
			return err
		}
		if _, err := r.stats.IncrementViews(txCtx, sess, view.PlaylistID, 1); err != nil {
			return err
		}
		outcome = Accepted
		return nil
	})
	if err != nil {
		return Rejected, err
	}
	return outcome, nil
}

func (r *ViewRecorder) translate(ctx context.Context, view po.PlaylistView, err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlaylistNotFound):
		return ErrPlaylistNotFound
	case repositories.IsConflict(err):
		r.log.WithContext(ctx).Warnw("msg", "record view conflict after retry", "playlist_id", view.PlaylistID, "user_id", view.UserID, "error", err)
		return ErrViewStorageConflict.WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		r.log.WithContext(ctx).Warnw("msg", "record view timeout", "playlist_id", view.PlaylistID, "user_id", view.UserID, "error", err)
		return ErrQueryTimeout.WithCause(err)
	default:
		r.log.WithContext(ctx).Errorw("msg", "record view failed", "playlist_id", view.PlaylistID, "user_id", view.UserID, "error", err)
		return ErrViewStorageUnavailable.WithCause(fmt.Errorf("record view: %w", err))
	}
}
