// Package dispatcher 提供固定大小的后台任务池，用于把浏览记账移出请求路径。
//
// 提交立即返回 Handle；调用方可以等待结果，也可以直接丢弃。任务运行在脱离请求取消信号的
// context 上，受 TaskTimeout 约束。队列满时 Submit 阻塞，形成背压。
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"go.opentelemetry.io/otel"
)

// ErrPoolClosed 表示任务池已停止，任务未被执行。
var ErrPoolClosed = errors.New("dispatcher: pool closed")

// ErrQueueFull 表示非阻塞提交时队列已满。
var ErrQueueFull = errors.New("dispatcher: queue full")

// ErrTaskPanic 包装任务执行中的 panic。
var ErrTaskPanic = errors.New("dispatcher: task panicked")

// Task 是提交到池中的工作单元，返回值语义由调用方约定（浏览记账中为是否被接受）。
type Task func(ctx context.Context) (bool, error)

// Config 控制任务池规模。
type Config struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

const (
	defaultWorkers     = 8
	defaultQueueSize   = 1024
	defaultTaskTimeout = 5 * time.Second
)

type job struct {
	ctx      context.Context
	name     string
	task     Task
	handle   *Handle
	queuedAt time.Time
}

// Pool 是 N 个 worker 共享一个缓冲队列的任务池，实现 transport.Server。
type Pool struct {
	cfg     Config
	queue   chan job
	quit    chan struct{}
	wg      sync.WaitGroup
	pending sync.WaitGroup // 正在等待入队的 Submit
	mu      sync.RWMutex
	started bool
	closed  bool
	metrics *poolMetrics
	log     *log.Helper
}

// NewPool 构造任务池，非法配置回退到默认值。
func NewPool(cfg Config, logger log.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = defaultTaskTimeout
	}
	helper := log.NewHelper(logger)
	return &Pool{
		cfg:     cfg,
		queue:   make(chan job, cfg.QueueSize),
		quit:    make(chan struct{}),
		metrics: newPoolMetrics(otel.GetMeterProvider().Meter("lingo-services-playlist.dispatcher"), helper),
		log:     helper,
	}
}

// Start 启动 worker。重复调用无副作用。
func (p *Pool) Start(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return nil
	}
	p.started = true
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.log.Infof("dispatcher started: workers=%d queue=%d task_timeout=%s", p.cfg.Workers, p.cfg.QueueSize, p.cfg.TaskTimeout)
	return nil
}

// Stop 拒绝新任务并等待已入队任务执行完毕；ctx 结束时剩余任务以 ErrPoolClosed 结束。
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	started := p.started
	close(p.quit)
	p.mu.Unlock()
	p.pending.Wait()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	var err error
	if started {
		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	p.drainRejected()
	if err != nil {
		p.log.Warnf("dispatcher stop interrupted: %v", err)
		return err
	}
	p.log.Info("dispatcher stopped")
	return nil
}

// Submit 提交任务。队列满时阻塞直到有空位、ctx 结束或池停止；池已关闭时返回已完成的 Handle。
// 等待期间不持有锁，Stop 不会被阻塞的提交方卡住。
func (p *Pool) Submit(ctx context.Context, name string, task Task) *Handle {
	h := newHandle()
	if task == nil {
		h.resolve(false, fmt.Errorf("dispatcher: nil task %q", name))
		return h
	}
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		h.resolve(false, ErrPoolClosed)
		return h
	}
	p.pending.Add(1)
	p.mu.RUnlock()
	defer p.pending.Done()

	select {
	case p.queue <- p.newJob(ctx, name, task, h):
		p.metrics.recordQueued(ctx, name)
	case <-p.quit:
		h.resolve(false, ErrPoolClosed)
	case <-ctx.Done():
		h.resolve(false, ctx.Err())
	}
	return h
}

// TrySubmit 与 Submit 相同，但队列满时不等待，直接以 ErrQueueFull 结束。
func (p *Pool) TrySubmit(ctx context.Context, name string, task Task) *Handle {
	h := newHandle()
	if task == nil {
		h.resolve(false, fmt.Errorf("dispatcher: nil task %q", name))
		return h
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		h.resolve(false, ErrPoolClosed)
		return h
	}
	select {
	case p.queue <- p.newJob(ctx, name, task, h):
		p.metrics.recordQueued(ctx, name)
	default:
		h.resolve(false, ErrQueueFull)
	}
	return h
}

// newJob 保留提交方 context 中的值（trace 等），但不继承其取消信号。
func (p *Pool) newJob(ctx context.Context, name string, task Task, h *Handle) job {
	return job{
		ctx:      context.WithoutCancel(ctx),
		name:     name,
		task:     task,
		handle:   h,
		queuedAt: time.Now(),
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.queue:
			p.run(j)
		case <-p.quit:
			for {
				select {
				case j := <-p.queue:
					p.run(j)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) run(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, p.cfg.TaskTimeout)
	defer cancel()
	p.metrics.recordWait(ctx, j.name, time.Since(j.queuedAt))

	var (
		ok  bool
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %s: %v", ErrTaskPanic, j.name, r)
			}
		}()
		ok, err = j.task(ctx)
	}()
	if err != nil {
		p.log.WithContext(ctx).Warnw("msg", "dispatcher task failed", "task", j.name, "error", err)
		p.metrics.recordFailure(ctx, j.name)
	}
	j.handle.resolve(ok, err)
}

// drainRejected 结束 Stop 之后仍留在队列中的任务。
func (p *Pool) drainRejected() {
	for {
		select {
		case j := <-p.queue:
			j.handle.resolve(false, ErrPoolClosed)
		default:
			return
		}
	}
}

var _ transport.Server = (*Pool)(nil)
