package xexec

import (
	"context"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xfuture"
	"github.com/omeyang/xexec/pkg/executor/xsched"
	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/util/xpool"
)

// FailsafeScheduledExecutor 周期任务不会因某次失败而停止的调度执行器。
//
// 每个动作都经过 xtask.WrapRunnable：某次执行 panic 时记录 ERROR 并捕获，
// 调度池看到的是一次正常完成，下一次执行照常安排。触发时间与底层池一致。
type FailsafeScheduledExecutor struct {
	pool *xsched.ScheduledPool
	opts options
}

func newFailsafeScheduledExecutor(pool *xsched.ScheduledPool, o options) *FailsafeScheduledExecutor {
	return &FailsafeScheduledExecutor{pool: pool, opts: o}
}

func (e *FailsafeScheduledExecutor) wrap(r xtask.Runnable, op string) *xtask.WrappedRunnable {
	return xtask.WrapRunnable(r, e.opts.wrapOptions(op)...)
}

func (e *FailsafeScheduledExecutor) wrapCallable(c xtask.Callable[any]) xtask.Callable[any] {
	return xtask.WrapCallable(c, e.opts.wrapOptions(opCall)...)
}

// scheduleWrapped 包装 r，交给 schedule，并把失败槽挂到返回的句柄上。
func (e *FailsafeScheduledExecutor) scheduleWrapped(
	r xtask.Runnable,
	op string,
	schedule func(xtask.Runnable) (xfuture.ScheduledFuture[any], error),
) (xfuture.ScheduledFuture[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	w := e.wrap(r, op)
	f, err := schedule(w)
	if err != nil {
		return nil, err
	}
	return xfuture.AdaptScheduled(f, w), nil
}

// Execute 立即调度 r，不返回结果句柄。
func (e *FailsafeScheduledExecutor) Execute(r xtask.Runnable) error {
	if r == nil {
		return xtask.ErrNilTask
	}
	return e.pool.Execute(e.wrap(r, opExecute))
}

// Submit 立即调度 r，返回挂有失败槽的结果句柄。
func (e *FailsafeScheduledExecutor) Submit(r xtask.Runnable) (xfuture.Future[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	w := e.wrap(r, opSubmit)
	f, err := e.pool.Submit(w)
	if err != nil {
		return nil, err
	}
	return xfuture.Adapt(f, w), nil
}

// SubmitWithResult 见 LoggingExecutor.SubmitWithResult。
func (e *FailsafeScheduledExecutor) SubmitWithResult(r xtask.Runnable, result any) (xfuture.Future[any], error) {
	if r == nil {
		return nil, xtask.ErrNilTask
	}
	w := e.wrap(r, opSubmitWithResult)
	f, err := e.pool.SubmitWithResult(w, result)
	if err != nil {
		return nil, err
	}
	return xfuture.Adapt(f, w), nil
}

// SubmitCallable 包装 c 后立即调度。
func (e *FailsafeScheduledExecutor) SubmitCallable(c xtask.Callable[any]) (xfuture.Future[any], error) {
	if c == nil {
		return nil, xtask.ErrNilTask
	}
	return e.pool.SubmitCallable(e.wrapCallable(c))
}

// InvokeAll 见 xfuture.InvokeAll。
func (e *FailsafeScheduledExecutor) InvokeAll(ctx context.Context, callables []xtask.Callable[any]) ([]xfuture.Future[any], error) {
	wrapped, err := wrapAll(callables, e.wrapCallable)
	if err != nil {
		return nil, err
	}
	return e.pool.InvokeAll(ctx, wrapped)
}

// InvokeAny 见 xfuture.InvokeAny。
func (e *FailsafeScheduledExecutor) InvokeAny(ctx context.Context, callables []xtask.Callable[any]) (any, error) {
	wrapped, err := wrapAll(callables, e.wrapCallable)
	if err != nil {
		return nil, err
	}
	return e.pool.InvokeAny(ctx, wrapped)
}

// Schedule 在 delay 之后执行 r 一次。
func (e *FailsafeScheduledExecutor) Schedule(r xtask.Runnable, delay time.Duration) (xfuture.ScheduledFuture[any], error) {
	return e.scheduleWrapped(r, opSchedule, func(w xtask.Runnable) (xfuture.ScheduledFuture[any], error) {
		return e.pool.Schedule(w, delay)
	})
}

// ScheduleCallable 在 delay 之后执行 c 一次。
func (e *FailsafeScheduledExecutor) ScheduleCallable(c xtask.Callable[any], delay time.Duration) (xfuture.ScheduledFuture[any], error) {
	if c == nil {
		return nil, xtask.ErrNilTask
	}
	return e.pool.ScheduleCallable(e.wrapCallable(c), delay)
}

// ScheduleAtFixedRate 固定频率执行 r，某次失败不影响之后的执行。
func (e *FailsafeScheduledExecutor) ScheduleAtFixedRate(r xtask.Runnable, initialDelay, period time.Duration) (xfuture.ScheduledFuture[any], error) {
	return e.scheduleWrapped(r, opFixedRate, func(w xtask.Runnable) (xfuture.ScheduledFuture[any], error) {
		return e.pool.ScheduleAtFixedRate(w, initialDelay, period)
	})
}

// ScheduleWithFixedDelay 固定延迟执行 r，某次失败不影响之后的执行。
func (e *FailsafeScheduledExecutor) ScheduleWithFixedDelay(r xtask.Runnable, initialDelay, delay time.Duration) (xfuture.ScheduledFuture[any], error) {
	return e.scheduleWrapped(r, opFixedDelay, func(w xtask.Runnable) (xfuture.ScheduledFuture[any], error) {
		return e.pool.ScheduleWithFixedDelay(w, initialDelay, delay)
	})
}

// ScheduleCron 按 cron 表达式执行 r，某次失败不影响之后的执行。
func (e *FailsafeScheduledExecutor) ScheduleCron(r xtask.Runnable, spec string) (xfuture.ScheduledFuture[any], error) {
	return e.scheduleWrapped(r, opCron, func(w xtask.Runnable) (xfuture.ScheduledFuture[any], error) {
		return e.pool.ScheduleCron(w, spec)
	})
}

// Shutdown 取消周期任务，已提交的一次性任务仍会执行。
func (e *FailsafeScheduledExecutor) Shutdown() { e.pool.Shutdown() }

// ShutdownNow 见 xsched.ScheduledPool.ShutdownNow。
func (e *FailsafeScheduledExecutor) ShutdownNow() []xtask.Runnable { return e.pool.ShutdownNow() }

// IsShutdown 报告执行器是否已关闭。
func (e *FailsafeScheduledExecutor) IsShutdown() bool { return e.pool.IsShutdown() }

// IsTerminated 报告执行器是否已终止。
func (e *FailsafeScheduledExecutor) IsTerminated() bool { return e.pool.IsTerminated() }

// AwaitTermination 等待执行器终止。
func (e *FailsafeScheduledExecutor) AwaitTermination(ctx context.Context) error {
	return e.pool.AwaitTermination(ctx)
}

// Close 关闭执行器并等待剩余的一次性任务完成。
func (e *FailsafeScheduledExecutor) Close() error { return e.pool.Close() }

// Stats 返回底层池的运行快照。
func (e *FailsafeScheduledExecutor) Stats() xpool.Stats { return e.pool.Stats() }
