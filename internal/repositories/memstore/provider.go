package memstore

import (
	"fmt"

	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/google/wire"
)

// ProviderSet 暴露内存存储及其仓储视图。
var ProviderSet = wire.NewSet(
	ProvideStore,
	ProvideManager,
	ProvideViewRepository,
	ProvideStatsRepository,
	ProvidePlaylistRepository,
)

// ProvideStore 构造内存存储并登记配置中的歌单。
func ProvideStore(cfg configloader.DatabaseConfig, logger log.Logger) (*Store, error) {
	store := New(logger)
	for i, p := range cfg.MemoryPlaylists {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, fmt.Errorf("data.memory.playlists[%d]: %w", i, err)
		}
		store.RegisterPlaylist(id, p.Title)
	}
	store.log.Infof("memory store ready: playlists=%d", len(cfg.MemoryPlaylists))
	return store, nil
}

// ProvideManager 以内存存储作为事务管理器。
func ProvideManager(s *Store) txmanager.Manager { return s }

// ProvideViewRepository 返回事件仓储。
func ProvideViewRepository(s *Store) *ViewRepository { return s.Views() }

// ProvideStatsRepository 返回计数仓储。
func ProvideStatsRepository(s *Store) *StatsRepository { return s.Stats() }

// ProvidePlaylistRepository 返回歌单仓储。
func ProvidePlaylistRepository(s *Store) *PlaylistRepository { return s.Playlists() }
