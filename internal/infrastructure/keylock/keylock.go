// Package keylock 提供按字符串 key 粒度的互斥锁表。
//
// 每个 key 的锁按引用计数创建与回收：首个持有者创建条目，最后一个释放者删除条目，
// 因此锁表大小只与当前竞争中的 key 数量相关，而不是历史出现过的 key 数量。
package keylock

import (
	"context"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type entry struct {
	refs int
	mu   chan struct{}
}

// Table 是分片的 key → 锁映射。不同 key 互不阻塞。
type Table struct {
	entries cmap.ConcurrentMap[string, *entry]
	pool    sync.Pool
}

// New 创建空锁表。
func New() *Table {
	return &Table{
		entries: cmap.New[*entry](),
		pool: sync.Pool{New: func() any {
			return &entry{mu: make(chan struct{}, 1)}
		}},
	}
}

// Unlock 释放 Lock 获得的锁，只能调用一次。
type Unlock func()

// Lock 阻塞直到获得 key 对应的锁或 ctx 结束。
func (t *Table) Lock(ctx context.Context, key string) (Unlock, error) {
	e := t.acquire(key)
	select {
	case e.mu <- struct{}{}:
	case <-ctx.Done():
		t.release(key)
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.mu
			t.release(key)
		})
	}, nil
}

// TryLock 非阻塞地尝试获得锁。
func (t *Table) TryLock(key string) (Unlock, bool) {
	e := t.acquire(key)
	select {
	case e.mu <- struct{}{}:
	default:
		t.release(key)
		return nil, false
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.mu
			t.release(key)
		})
	}, true
}

// Len 返回当前存活的锁条目数量。
func (t *Table) Len() int {
	return t.entries.Count()
}

func (t *Table) acquire(key string) *entry {
	return t.entries.Upsert(key, nil, func(exist bool, cur, _ *entry) *entry {
		if !exist {
			cur = t.pool.Get().(*entry)
		}
		cur.refs++
		return cur
	})
}

func (t *Table) release(key string) {
	t.entries.RemoveCb(key, func(_ string, e *entry, exists bool) bool {
		if !exists {
			return false
		}
		e.refs--
		if e.refs == 0 {
			t.pool.Put(e)
			return true
		}
		return false
	})
}
