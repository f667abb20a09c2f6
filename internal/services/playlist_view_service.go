package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/models/vo"
	"github.com/bionicotaku/lingo-services-playlist/internal/tasks/dispatcher"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// PlaylistViewService 是浏览记账与热度排序对外的入口。
//
// RegisterView 只做本地预检和入队，存储 I/O 全部在任务池中完成；
// RankCollections 与 GetStats 同步读取存储。
type PlaylistViewService struct {
	recorder  *ViewRecorder
	ranker    *PopularityRanker
	gate      *RateGate
	pool      *dispatcher.Pool
	stats     PlaylistStatsRepo
	playlists PlaylistRepo
	txManager txmanager.Manager
	now       func() time.Time
	log       *log.Helper
}

// NewPlaylistViewService 构造服务门面。
func NewPlaylistViewService(recorder *ViewRecorder, ranker *PopularityRanker, gate *RateGate, pool *dispatcher.Pool, stats PlaylistStatsRepo, playlists PlaylistRepo, tx txmanager.Manager, logger log.Logger) *PlaylistViewService {
	return &PlaylistViewService{
		recorder:  recorder,
		ranker:    ranker,
		gate:      gate,
		pool:      pool,
		stats:     stats,
		playlists: playlists,
		txManager: tx,
		now:       time.Now,
		log:       log.NewHelper(logger),
	}
}

// RegisterView 异步登记一次浏览。返回的 Handle 结果为是否计入，可以丢弃。
// at 为零值时使用当前时间。
func (s *PlaylistViewService) RegisterView(ctx context.Context, playlistID, userID uuid.UUID, at time.Time) *dispatcher.Handle {
	if playlistID == uuid.Nil || userID == uuid.Nil {
		return dispatcher.Resolved(false, errInvalidArgument("playlist_id and user_id are required"))
	}
	if at.IsZero() {
		at = s.now()
	}
	if !s.gate.PreCheck(userID, playlistID, at) {
		s.log.WithContext(ctx).Debugf("view rejected by cache: playlist_id=%s user_id=%s", playlistID, userID)
		return dispatcher.Resolved(false, nil)
	}
	return s.pool.Submit(ctx, "record_view", func(taskCtx context.Context) (bool, error) {
		outcome, err := s.recorder.Record(taskCtx, playlistID, userID, at)
		if err != nil {
			return false, err
		}
		return outcome == Accepted, nil
	})
}

// RankCollections 按模式排序歌单摘要。at 为零值时使用当前时间。
func (s *PlaylistViewService) RankCollections(ctx context.Context, briefs []vo.PlaylistBrief, mode RankMode, at time.Time) ([]vo.PlaylistBrief, error) {
	if at.IsZero() {
		at = s.now()
	}
	return s.ranker.Rank(ctx, briefs, mode, at)
}

// GetStats 返回歌单的浏览统计；歌单不存在时返回 ErrPlaylistNotFound。
func (s *PlaylistViewService) GetStats(ctx context.Context, playlistID uuid.UUID) (*vo.PlaylistStats, error) {
	var result *vo.PlaylistStats
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		exists, err := s.playlists.Exists(txCtx, sess, playlistID)
		if err != nil {
			return fmt.Errorf("check playlist: %w", err)
		}
		if !exists {
			return ErrPlaylistNotFound
		}
		stats, err := s.stats.ListByIDs(txCtx, sess, []uuid.UUID{playlistID})
		if err != nil {
			return fmt.Errorf("list playlist stats: %w", err)
		}
		result = vo.NewPlaylistStats(playlistID, stats[playlistID])
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPlaylistNotFound) {
			return nil, ErrPlaylistNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.WithContext(ctx).Warnf("get playlist stats timeout: playlist_id=%s", playlistID)
			return nil, ErrQueryTimeout
		}
		s.log.WithContext(ctx).Errorf("get playlist stats failed: playlist_id=%s err=%v", playlistID, err)
		return nil, ErrViewStorageUnavailable.WithCause(err)
	}
	return result, nil
}

// Ready 检查存储是否可用。
func (s *PlaylistViewService) Ready(ctx context.Context) error {
	return s.playlists.Ping(ctx)
}
