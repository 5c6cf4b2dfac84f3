package xexec

import (
	"context"

	"github.com/omeyang/xexec/pkg/executor/xfuture"
	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/util/xpool"
)

// 观测跨度使用的操作名
const (
	opExecute          = "execute"
	opSubmit           = "submit"
	opSubmitWithResult = "submit_with_result"
	opCall             = "call"
	opSchedule         = "schedule"
	opFixedRate        = "fixed_rate"
	opFixedDelay       = "fixed_delay"
	opCron             = "cron"
)

// LoggingExecutor 记录并保留任务失败的线程池执行器。
//
// 排队、拒绝与生命周期行为与底层 xpool.ThreadPool 完全一致。
type LoggingExecutor struct {
	pool *xpool.ThreadPool
	opts options
}

// newLoggingExecutor 包装 pool。
func newLoggingExecutor(pool *xpool.ThreadPool, o options) *LoggingExecutor {
	return &LoggingExecutor{pool: pool, opts: o}
}

func (e *LoggingExecutor) wrap(r xtask.Runnable, op string) *xtask.WrappedRunnable {
	return xtask.WrapRunnable(r, e.opts.wrapOptions(op)...)
}

func (e *LoggingExecutor) wrapCallable(c xtask.Callable[any]) xtask.Callable[any] {
	return xtask.WrapCallable(c, e.opts.wrapOptions(opCall)...)
}

// Execute 包装 r 后交给池，不返回结果句柄；失败只体现在日志中。
func (e *LoggingExecutor) Execute(r xtask.Runnable) error {
	if r == nil {
		return xtask.ErrNilTask
	}
	return e.pool.Execute(e.wrap(r, opExecute))
}

// Submit 包装 r 后提交，返回挂有失败槽的结果句柄。
func (e *LoggingExecutor) Submit(r xtask.Runnable) (xfuture.Future[any], error) {
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

// SubmitWithResult 包装 r 后原样交给池的 SubmitWithResult，由池自己构造携带
// result 的原生 future，再把失败槽挂到该 future 上。
// r 失败时 Get 返回 *xfuture.ExecutionError 而不是 result。
func (e *LoggingExecutor) SubmitWithResult(r xtask.Runnable, result any) (xfuture.Future[any], error) {
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

// SubmitCallable 包装 c 后提交，失败由原生 future 承载。
func (e *LoggingExecutor) SubmitCallable(c xtask.Callable[any]) (xfuture.Future[any], error) {
	if c == nil {
		return nil, xtask.ErrNilTask
	}
	return e.pool.SubmitCallable(e.wrapCallable(c))
}

// InvokeAll 包装每个计算后交给池，见 xfuture.InvokeAll。
func (e *LoggingExecutor) InvokeAll(ctx context.Context, callables []xtask.Callable[any]) ([]xfuture.Future[any], error) {
	wrapped, err := wrapAll(callables, e.wrapCallable)
	if err != nil {
		return nil, err
	}
	return e.pool.InvokeAll(ctx, wrapped)
}

// InvokeAny 包装每个计算后交给池，见 xfuture.InvokeAny。
func (e *LoggingExecutor) InvokeAny(ctx context.Context, callables []xtask.Callable[any]) (any, error) {
	wrapped, err := wrapAll(callables, e.wrapCallable)
	if err != nil {
		return nil, err
	}
	return e.pool.InvokeAny(ctx, wrapped)
}

// Shutdown 见 xpool.ThreadPool.Shutdown。
func (e *LoggingExecutor) Shutdown() { e.pool.Shutdown() }

// ShutdownNow 见 xpool.ThreadPool.ShutdownNow。
func (e *LoggingExecutor) ShutdownNow() []xtask.Runnable { return e.pool.ShutdownNow() }

// IsShutdown 报告执行器是否已关闭。
func (e *LoggingExecutor) IsShutdown() bool { return e.pool.IsShutdown() }

// IsTerminated 报告执行器是否已终止。
func (e *LoggingExecutor) IsTerminated() bool { return e.pool.IsTerminated() }

// AwaitTermination 等待执行器终止。
func (e *LoggingExecutor) AwaitTermination(ctx context.Context) error {
	return e.pool.AwaitTermination(ctx)
}

// Close 关闭执行器并等待已提交的任务完成。
func (e *LoggingExecutor) Close() error { return e.pool.Close() }

// Stats 返回底层池的运行快照。
func (e *LoggingExecutor) Stats() xpool.Stats { return e.pool.Stats() }

func wrapAll(callables []xtask.Callable[any], wrap func(xtask.Callable[any]) xtask.Callable[any]) ([]xtask.Callable[any], error) {
	wrapped := make([]xtask.Callable[any], len(callables))
	for i, c := range callables {
		if c == nil {
			return nil, xtask.ErrNilTask
		}
		wrapped[i] = wrap(c)
	}
	return wrapped, nil
}
