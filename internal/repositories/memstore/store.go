// Package memstore 提供进程内的浏览记账存储，实现与 PostgreSQL 仓储相同的接口。
//
// 写入在会话内暂存，事务提交时一次性应用到对应歌单分片，失败或回滚时丢弃，
// 因此"事件 + 计数"要么同时可见要么都不可见。歌单分片存放在 concurrent-map 中，
// 不同歌单之间互不阻塞。
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/keylock"
	"github.com/bionicotaku/lingo-services-playlist/internal/models/po"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// ErrNoSession 表示需要事务会话的操作在事务外被调用。
var ErrNoSession = errors.New("memstore: transaction session required")

var (
	errPlaylistMissing = fmt.Errorf("memstore: %w", repositories.ErrPlaylistNotFound)
	errDuplicateView   = fmt.Errorf("memstore: duplicate view: %w", repositories.ErrStorageConflict)
	errReadOnly        = errors.New("memstore: write in read-only session")
)

// Faults 用于在测试中注入存储故障。返回非 nil 错误时对应操作失败。
type Faults struct {
	BeforeInsert    func(view po.PlaylistView) error
	BeforeIncrement func(playlistID uuid.UUID) error
	BeforeCommit    func() error
}

type shard struct {
	mu    sync.RWMutex
	title string
	views []po.PlaylistView
	index map[viewKey]struct{}
	stats *po.PlaylistViewStats
}

type viewKey struct {
	userID     uuid.UUID
	occurredAt int64
}

// Store 是内存存储本体，同时实现 txmanager.Manager。
type Store struct {
	shards cmap.ConcurrentMap[string, *shard]
	locks  *keylock.Table
	faults atomic.Pointer[Faults]
	now    func() time.Time
	log    *log.Helper
}

// New 创建空的内存存储。
func New(logger log.Logger) *Store {
	return &Store{
		shards: cmap.New[*shard](),
		locks:  keylock.New(),
		now:    time.Now,
		log:    log.NewHelper(logger),
	}
}

// RegisterPlaylist 登记一个歌单。重复登记只更新标题。
func (s *Store) RegisterPlaylist(playlistID uuid.UUID, title string) {
	s.shards.Upsert(playlistID.String(), nil, func(exist bool, cur, _ *shard) *shard {
		if !exist {
			cur = &shard{index: make(map[viewKey]struct{})}
		}
		cur.mu.Lock()
		cur.title = title
		cur.mu.Unlock()
		return cur
	})
}

// SetFaults 替换当前故障注入配置，传 nil 清除。
func (s *Store) SetFaults(f *Faults) {
	s.faults.Store(f)
}

// LockedKeys 返回当前被持有或等待中的 viewer 锁数量。
func (s *Store) LockedKeys() int {
	return s.locks.Len()
}

func (s *Store) shard(playlistID uuid.UUID) (*shard, bool) {
	return s.shards.Get(playlistID.String())
}

func (s *Store) fault() *Faults {
	if f := s.faults.Load(); f != nil {
		return f
	}
	return &Faults{}
}

// WithinTx 在暂存会话中执行 fn，fn 成功后原子提交。
func (s *Store) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	sess := newSession(ctx, s, false)
	defer sess.release()
	if err := fn(ctx, sess); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return sess.commit()
}

// WithinReadOnlyTx 执行只读会话，会话内的写操作返回错误。
func (s *Store) WithinReadOnlyTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	sess := newSession(ctx, s, true)
	defer sess.release()
	return fn(ctx, sess)
}

var _ txmanager.Manager = (*Store)(nil)

// session 暂存一次事务中的写入与持有的 viewer 锁。
type session struct {
	ctx      context.Context
	store    *Store
	readOnly bool

	views    []po.PlaylistView
	deltas   map[uuid.UUID]int64
	recent   map[uuid.UUID]int64
	recentAt time.Time
	unlocks  []keylock.Unlock
}

func newSession(ctx context.Context, store *Store, readOnly bool) *session {
	return &session{
		ctx:      ctx,
		store:    store,
		readOnly: readOnly,
		deltas:   make(map[uuid.UUID]int64),
	}
}

// Tx 内存会话没有底层数据库事务。
func (s *session) Tx() pgx.Tx { return nil }

func (s *session) Context() context.Context { return s.ctx }

func (s *session) release() {
	for i := len(s.unlocks) - 1; i >= 0; i-- {
		s.unlocks[i]()
	}
	s.unlocks = nil
}

func (s *session) touched() []uuid.UUID {
	set := make(map[uuid.UUID]struct{}, len(s.deltas)+len(s.recent))
	for _, v := range s.views {
		set[v.PlaylistID] = struct{}{}
	}
	for id := range s.deltas {
		set[id] = struct{}{}
	}
	for id := range s.recent {
		set[id] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// commit 按歌单 ID 顺序锁住所有涉及的分片后一次性写入。
func (s *session) commit() error {
	if hook := s.store.fault().BeforeCommit; hook != nil {
		if err := hook(); err != nil {
			return err
		}
	}
	ids := s.touched()
	if len(ids) == 0 {
		return nil
	}
	shards := make(map[uuid.UUID]*shard, len(ids))
	for _, id := range ids {
		sh, ok := s.store.shard(id)
		if !ok {
			return errPlaylistMissing
		}
		shards[id] = sh
	}
	for _, id := range ids {
		shards[id].mu.Lock()
	}
	defer func() {
		for _, id := range ids {
			shards[id].mu.Unlock()
		}
	}()

	for _, v := range s.views {
		sh := shards[v.PlaylistID]
		if _, dup := sh.index[keyOf(v)]; dup {
			return errDuplicateView
		}
	}
	now := s.store.now().UTC()
	for _, v := range s.views {
		sh := shards[v.PlaylistID]
		sh.index[keyOf(v)] = struct{}{}
		sh.views = append(sh.views, v)
	}
	for id, delta := range s.deltas {
		sh := shards[id]
		if sh.stats == nil {
			sh.stats = &po.PlaylistViewStats{PlaylistID: id}
		}
		sh.stats.TotalViews += delta
		sh.stats.UpdatedAt = now
	}
	for id, count := range s.recent {
		sh := shards[id]
		if sh.stats == nil {
			sh.stats = &po.PlaylistViewStats{PlaylistID: id}
		}
		if sh.stats.RecentRefreshedAt != nil && sh.stats.RecentRefreshedAt.After(s.recentAt) {
			continue
		}
		at := s.recentAt
		sh.stats.RecentViews = count
		sh.stats.RecentRefreshedAt = &at
		sh.stats.UpdatedAt = now
	}
	return nil
}

func keyOf(v po.PlaylistView) viewKey {
	return viewKey{userID: v.UserID, occurredAt: v.OccurredAt.UnixNano()}
}

// autocommit 在没有外层会话时为单个写操作开启并提交隐式事务。
func (s *Store) autocommit(ctx context.Context, sess txmanager.Session, fn func(*session) error) error {
	if ms, ok := asSession(sess); ok {
		if ms.readOnly {
			return errReadOnly
		}
		return fn(ms)
	}
	return s.WithinTx(ctx, txmanager.TxOptions{}, func(_ context.Context, tx txmanager.Session) error {
		ms, _ := asSession(tx)
		return fn(ms)
	})
}

func asSession(sess txmanager.Session) (*session, bool) {
	if sess == nil {
		return nil, false
	}
	ms, ok := sess.(*session)
	return ms, ok
}
