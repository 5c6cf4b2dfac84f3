package xpool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xfuture"
	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/util/xthread"
)

type poolState uint8

const (
	stateRunning poolState = iota
	stateShutdown
	stateStop
	stateTerminated
)

// 编译期断言
var (
	_ io.Closer      = (*ThreadPool)(nil)
	_ xtask.Executor = (*ThreadPool)(nil)
)

// ThreadPool 是 core/max 语义的线程池。
type ThreadPool struct {
	core      int
	max       int
	keepAlive time.Duration
	queue     *taskQueue
	opts      options

	// ctx 是所有任务 ctx 的根，ShutdownNow 时取消。
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      poolState
	workers    int
	largest    int
	terminated chan struct{}

	active    atomic.Int64
	taskCount atomic.Int64
	completed atomic.Int64
}

// New 创建线程池。worker 在有任务时才启动。
//
// 参数：
//   - core: 常驻 worker 数，[0, MaxPoolSize]
//   - max: worker 数上限，[max(core,1), MaxPoolSize]
//   - keepAlive: 超过 core 的 worker 的空闲存活时间，不能为负
//   - queue: 工作队列纪律
func New(core, max int, keepAlive time.Duration, queue Queue, opts ...Option) (*ThreadPool, error) {
	if core < 0 || core > MaxPoolSize {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidCoreSize, core, MaxPoolSize)
	}
	if max < 1 || max < core || max > MaxPoolSize {
		return nil, fmt.Errorf("%w: %d (core %d, limit %d)", ErrInvalidMaxSize, max, core, MaxPoolSize)
	}
	if keepAlive < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeepAlive, keepAlive)
	}
	if err := queue.validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.factory == nil {
		o.factory = xthread.NewNamedFactory(o.name)
	}
	if o.name != "" {
		o.logger = o.logger.With(slog.String("pool", o.name))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ThreadPool{
		core:       core,
		max:        max,
		keepAlive:  keepAlive,
		queue:      newTaskQueue(queue),
		opts:       o,
		ctx:        ctx,
		cancel:     cancel,
		terminated: make(chan struct{}),
	}, nil
}

// Execute 安排 r 在将来某个时刻执行。
// 被拒绝时返回拒绝策略给出的错误。
func (p *ThreadPool) Execute(r xtask.Runnable) error {
	if r == nil {
		return xtask.ErrNilTask
	}

	p.mu.Lock()
	if p.state != stateRunning {
		p.mu.Unlock()
		return p.opts.policy.Rejected(r, p)
	}
	if p.workers < p.core {
		p.addWorkerLocked(r)
		p.mu.Unlock()
		return nil
	}
	if p.queue.offer(r) {
		p.taskCount.Add(1)
		if p.workers == 0 {
			p.addWorkerLocked(nil)
		}
		p.mu.Unlock()
		return nil
	}
	if p.workers < p.max {
		p.addWorkerLocked(r)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.opts.policy.Rejected(r, p)
}

// Submit 提交动作，返回结果为 nil 的结果句柄。
func (p *ThreadPool) Submit(r xtask.Runnable) (xfuture.Future[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	return p.submit(xfuture.NewRunnableTask[any](r, nil))
}

// SubmitWithResult 提交动作，成功后结果句柄返回 result。
func (p *ThreadPool) SubmitWithResult(r xtask.Runnable, result any) (xfuture.Future[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	return p.submit(xfuture.NewRunnableTask(r, result))
}

// SubmitCallable 提交计算。
func (p *ThreadPool) SubmitCallable(c xtask.Callable[any]) (xfuture.Future[any], error) {
	if c == nil {
		return nil, xtask.ErrNilTask
	}
	return p.submit(xfuture.NewTask(c))
}

func (p *ThreadPool) submit(task *xfuture.Task[any]) (xfuture.Future[any], error) {
	if err := p.Execute(task); err != nil {
		return nil, err
	}
	return task, nil
}

// InvokeAll 执行全部计算并等待其完成，见 xfuture.InvokeAll。
func (p *ThreadPool) InvokeAll(ctx context.Context, callables []xtask.Callable[any]) ([]xfuture.Future[any], error) {
	return xfuture.InvokeAll(ctx, p, callables)
}

// InvokeAny 返回第一个成功完成的计算结果，见 xfuture.InvokeAny。
func (p *ThreadPool) InvokeAny(ctx context.Context, callables []xtask.Callable[any]) (any, error) {
	return xfuture.InvokeAny(ctx, p, callables)
}

func (p *ThreadPool) addWorkerLocked(first xtask.Runnable) {
	if first != nil {
		p.taskCount.Add(1)
	}
	p.workers++
	if p.workers > p.largest {
		p.largest = p.workers
	}
	thread := p.opts.factory.NewThread()
	go p.worker(thread, first)
}

func (p *ThreadPool) worker(thread *xthread.Thread, task xtask.Runnable) {
	ctx := xthread.NewContext(p.ctx, thread)
	for {
		if task == nil {
			var ok bool
			if task, ok = p.getTask(); !ok {
				return
			}
		}
		p.runTask(ctx, thread, task)
		task = nil
	}
}

// getTask 取下一个任务。返回 false 时 worker 已从计数中移除，应当退出。
func (p *ThreadPool) getTask() (xtask.Runnable, bool) {
	for {
		p.mu.Lock()
		timed := p.workers > p.core
		p.mu.Unlock()

		timeout := time.Duration(-1)
		if timed {
			timeout = p.keepAlive
		}
		r, res := p.queue.poll(timeout)
		switch res {
		case pollOK:
			return r, true
		case pollClosed:
			p.mu.Lock()
			p.workers--
			p.tryTerminateLocked()
			p.mu.Unlock()
			return nil, false
		case pollTimeout:
			p.mu.Lock()
			if p.workers > p.core && (p.workers > 1 || p.queue.len() == 0) {
				p.workers--
				p.tryTerminateLocked()
				p.mu.Unlock()
				return nil, false
			}
			p.mu.Unlock()
		}
	}
}

func (p *ThreadPool) runTask(ctx context.Context, thread *xthread.Thread, r xtask.Runnable) {
	p.active.Add(1)
	defer func() {
		if rec := recover(); rec != nil {
			p.opts.logger.Error("xpool: worker panic recovered",
				slog.String("thread", thread.Name),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
		}
		p.active.Add(-1)
		p.completed.Add(1)
	}()
	r.Run(ctx)
}

// runInCaller 在调用方 goroutine 中执行 r，供 CallerRunsPolicy 使用。
func (p *ThreadPool) runInCaller(r xtask.Runnable) {
	r.Run(p.ctx)
}

// Shutdown 不再接收新任务，已排队的任务继续执行。不等待任务完成。
func (p *ThreadPool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateRunning {
		p.state = stateShutdown
	}
	p.queue.close()
	p.tryTerminateLocked()
}

// ShutdownNow 不再接收新任务，取出并返回所有排队任务，取消正在运行任务的 ctx。
func (p *ThreadPool) ShutdownNow() []xtask.Runnable {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state < stateStop {
		p.state = stateStop
	}
	pending := p.queue.drain()
	p.queue.close()
	p.cancel()
	p.tryTerminateLocked()
	return pending
}

func (p *ThreadPool) tryTerminateLocked() {
	if p.state == stateRunning || p.state == stateTerminated {
		return
	}
	if p.workers > 0 || p.queue.len() > 0 {
		return
	}
	p.state = stateTerminated
	p.cancel()
	close(p.terminated)
}

// IsShutdown 报告池是否已关闭。
func (p *ThreadPool) IsShutdown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != stateRunning
}

// IsTerminated 报告池关闭后所有 worker 是否都已退出。
func (p *ThreadPool) IsTerminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateTerminated
}

// AwaitTermination 等待池终止，ctx 先结束时返回 ctx.Err()。
func (p *ThreadPool) AwaitTermination(ctx context.Context) error {
	select {
	case <-p.terminated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 关闭池并等待所有任务完成。
func (p *ThreadPool) Close() error {
	p.Shutdown()
	return p.AwaitTermination(context.Background())
}

// Name 返回池名称。
func (p *ThreadPool) Name() string {
	return p.opts.name
}
