package dispatcher

import (
	"context"
	"sync"
)

// Handle 表示一次提交的结果。丢弃 Handle 不影响任务执行。
type Handle struct {
	done chan struct{}
	once sync.Once
	ok   bool
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func (h *Handle) resolve(ok bool, err error) {
	h.once.Do(func() {
		h.ok = ok
		h.err = err
		close(h.done)
	})
}

// Done 在任务结束后关闭。
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait 等待任务结束或 ctx 结束。ctx 结束只影响本次等待，不会取消任务。
func (h *Handle) Wait(ctx context.Context) (bool, error) {
	select {
	case <-h.done:
		return h.ok, h.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Resolved 返回一个已完成的 Handle，用于无需进入任务池的结果。
func Resolved(ok bool, err error) *Handle {
	h := newHandle()
	h.resolve(ok, err)
	return h
}
