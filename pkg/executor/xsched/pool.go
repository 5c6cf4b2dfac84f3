package xsched

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
	"github.com/omeyang/xexec/pkg/util/xpool"
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
	_ io.Closer      = (*ScheduledPool)(nil)
	_ xtask.Executor = (*ScheduledPool)(nil)
)

// ScheduledPool 延迟与周期任务的调度池。
type ScheduledPool struct {
	threads int
	queue   *delayQueue
	opts    options

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      poolState
	workers    int
	largest    int
	terminated chan struct{}

	seq       atomic.Uint64
	active    atomic.Int64
	taskCount atomic.Int64
	completed atomic.Int64
}

// New 创建 threads 个 worker 的调度池，worker 在首次调度时启动。
func New(threads int, opts ...Option) (*ScheduledPool, error) {
	if threads < 1 || threads > xpool.MaxPoolSize {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidThreads, threads, xpool.MaxPoolSize)
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
	return &ScheduledPool{
		threads:    threads,
		queue:      newDelayQueue(),
		opts:       o,
		ctx:        ctx,
		cancel:     cancel,
		terminated: make(chan struct{}),
	}, nil
}

// Schedule 在 delay 之后执行 r 一次。
func (p *ScheduledPool) Schedule(r xtask.Runnable, delay time.Duration) (xfuture.ScheduledFuture[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	return p.delayedExecute(p.newTask(xfuture.NewRunnableTask[any](r, nil), delay))
}

// ScheduleCallable 在 delay 之后执行 c 一次。
func (p *ScheduledPool) ScheduleCallable(c xtask.Callable[any], delay time.Duration) (xfuture.ScheduledFuture[any], error) {
	if c == nil {
		return nil, xtask.ErrNilTask
	}
	return p.delayedExecute(p.newTask(xfuture.NewTask(c), delay))
}

// ScheduleAtFixedRate 在 initialDelay 之后首次执行 r，之后每隔 period 执行一次。
// 某次执行耗时超过 period 时，下一次在其结束后立即开始，不会并发执行。
func (p *ScheduledPool) ScheduleAtFixedRate(r xtask.Runnable, initialDelay, period time.Duration) (xfuture.ScheduledFuture[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, period)
	}
	t := p.newTask(xfuture.NewRunnableTask[any](r, nil), initialDelay)
	t.period = period
	return p.delayedExecute(t)
}

// ScheduleWithFixedDelay 在 initialDelay 之后首次执行 r，之后每次结束 delay 后再执行。
func (p *ScheduledPool) ScheduleWithFixedDelay(r xtask.Runnable, initialDelay, delay time.Duration) (xfuture.ScheduledFuture[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	if delay <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, delay)
	}
	t := p.newTask(xfuture.NewRunnableTask[any](r, nil), initialDelay)
	t.period = -delay
	return p.delayedExecute(t)
}

// ScheduleCron 按 cron 表达式执行 r。
//
// 支持 5 段（分 时 日 月 周）和 6 段（秒 分 时 日 月 周）表达式，
// 以及 @every 1m、@hourly 等描述符。不会再匹配任何时间的表达式（如 2 月 30 日）
// 返回 ErrInvalidCronSpec。
func (p *ScheduledPool) ScheduleCron(r xtask.Runnable, spec string) (xfuture.ScheduledFuture[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	schedule, err := p.opts.parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidCronSpec, spec, err)
	}
	next := schedule.Next(time.Now().In(p.opts.location))
	if next.IsZero() {
		return nil, fmt.Errorf("%w %q: no matching time", ErrInvalidCronSpec, spec)
	}
	t := p.newTask(xfuture.NewRunnableTask[any](r, nil), 0)
	t.schedule = schedule
	t.at.Store(next.UnixNano())
	return p.delayedExecute(t)
}

// Execute 立即调度 r，等价于零延迟的 Schedule。
func (p *ScheduledPool) Execute(r xtask.Runnable) error {
	_, err := p.Schedule(r, 0)
	return err
}

// Submit 立即调度 r，返回结果为 nil 的结果句柄。
func (p *ScheduledPool) Submit(r xtask.Runnable) (xfuture.Future[any], error) {
	return asFuture(p.Schedule(r, 0))
}

// SubmitWithResult 立即调度 r，成功后结果句柄返回 result。
func (p *ScheduledPool) SubmitWithResult(r xtask.Runnable, result any) (xfuture.Future[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	return asFuture(p.delayedExecute(p.newTask(xfuture.NewRunnableTask(r, result), 0)))
}

// SubmitCallable 立即调度 c。
func (p *ScheduledPool) SubmitCallable(c xtask.Callable[any]) (xfuture.Future[any], error) {
	return asFuture(p.ScheduleCallable(c, 0))
}

// InvokeAll 执行全部计算并等待其完成，见 xfuture.InvokeAll。
func (p *ScheduledPool) InvokeAll(ctx context.Context, callables []xtask.Callable[any]) ([]xfuture.Future[any], error) {
	return xfuture.InvokeAll(ctx, p, callables)
}

// InvokeAny 返回第一个成功完成的计算结果，见 xfuture.InvokeAny。
func (p *ScheduledPool) InvokeAny(ctx context.Context, callables []xtask.Callable[any]) (any, error) {
	return xfuture.InvokeAny(ctx, p, callables)
}

func asFuture(f xfuture.ScheduledFuture[any], err error) (xfuture.Future[any], error) {
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (p *ScheduledPool) newTask(task *xfuture.Task[any], delay time.Duration) *scheduledTask {
	t := &scheduledTask{
		Task:  task,
		pool:  p,
		seq:   p.seq.Add(1),
		index: -1,
	}
	t.at.Store(triggerTime(time.Now().UnixNano(), delay))
	return t
}

func (p *ScheduledPool) delayedExecute(t *scheduledTask) (xfuture.ScheduledFuture[any], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateRunning || !p.queue.push(t) {
		return nil, xpool.ErrPoolStopped
	}
	p.taskCount.Add(1)
	if p.workers < p.threads {
		p.addWorkerLocked()
	}
	return t, nil
}

// reExecutePeriodic 周期任务完成一次后重新入队；池已关闭时取消该任务。
func (p *ScheduledPool) reExecutePeriodic(t *scheduledTask) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateRunning && p.queue.push(t) {
		return
	}
	t.Task.Cancel(false)
}

func (p *ScheduledPool) running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateRunning
}

func (p *ScheduledPool) addWorkerLocked() {
	p.workers++
	if p.workers > p.largest {
		p.largest = p.workers
	}
	thread := p.opts.factory.NewThread()
	go p.worker(thread)
}

func (p *ScheduledPool) worker(thread *xthread.Thread) {
	ctx := xthread.NewContext(p.ctx, thread)
	for {
		t, ok := p.queue.take()
		if !ok {
			p.mu.Lock()
			p.workers--
			p.tryTerminateLocked()
			p.mu.Unlock()
			return
		}
		p.runTask(ctx, thread, t)
	}
}

func (p *ScheduledPool) runTask(ctx context.Context, thread *xthread.Thread, t *scheduledTask) {
	p.active.Add(1)
	defer func() {
		if rec := recover(); rec != nil {
			p.opts.logger.Error("xsched: worker panic recovered",
				slog.String("thread", thread.Name),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
		}
		p.active.Add(-1)
		p.completed.Add(1)
	}()
	t.Run(ctx)
}

// Shutdown 取消所有周期任务，已提交的一次性任务继续按时执行。不等待任务完成。
func (p *ScheduledPool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateRunning {
		p.state = stateShutdown
	}
	for _, t := range p.queue.removeIf((*scheduledTask).periodic) {
		t.Task.Cancel(false)
	}
	p.queue.close()
	p.tryTerminateLocked()
}

// ShutdownNow 取出并返回所有排队任务，取消正在运行任务的 ctx。
func (p *ScheduledPool) ShutdownNow() []xtask.Runnable {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state < stateStop {
		p.state = stateStop
	}
	drained := p.queue.drain()
	p.queue.close()
	p.cancel()
	p.tryTerminateLocked()

	pending := make([]xtask.Runnable, 0, len(drained))
	for _, t := range drained {
		pending = append(pending, t)
	}
	return pending
}

func (p *ScheduledPool) tryTerminateLocked() {
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
func (p *ScheduledPool) IsShutdown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != stateRunning
}

// IsTerminated 报告池关闭后所有 worker 是否都已退出。
func (p *ScheduledPool) IsTerminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateTerminated
}

// AwaitTermination 等待池终止，ctx 先结束时返回 ctx.Err()。
func (p *ScheduledPool) AwaitTermination(ctx context.Context) error {
	select {
	case <-p.terminated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 关闭池并等待剩余的一次性任务完成。
func (p *ScheduledPool) Close() error {
	p.Shutdown()
	return p.AwaitTermination(context.Background())
}

// Name 返回池名称。
func (p *ScheduledPool) Name() string {
	return p.opts.name
}

// Stats 返回当前快照，QueueSize 包含尚未到期的任务。
func (p *ScheduledPool) Stats() xpool.Stats {
	p.mu.Lock()
	size, largest := p.workers, p.largest
	p.mu.Unlock()
	return xpool.Stats{
		PoolSize:           size,
		ActiveCount:        int(p.active.Load()),
		LargestPoolSize:    largest,
		QueueSize:          p.queue.len(),
		TaskCount:          p.taskCount.Load(),
		CompletedTaskCount: p.completed.Load(),
	}
}
