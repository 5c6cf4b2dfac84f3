package xfuture

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCancelled 任务在完成前被取消。
	ErrCancelled = errors.New("xfuture: task cancelled")

	// ErrTimeout 等待结果超时。
	ErrTimeout = errors.New("xfuture: wait timed out")

	// ErrResultType 结果类型与期望不符。
	ErrResultType = errors.New("xfuture: unexpected result type")

	// ErrNoTasks 批量调用没有提供任何任务。
	ErrNoTasks = errors.New("xfuture: no tasks")
)

// ExecutionError 表示任务执行失败，Cause 为失败原因。
type ExecutionError struct {
	Cause error
}

// Error 实现 error 接口。
func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return "xfuture: execution failed"
	}
	return "xfuture: execution failed: " + e.Cause.Error()
}

// Unwrap 返回失败原因。
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Future 异步计算的结果句柄。
type Future[T any] interface {
	// Get 阻塞直到任务完成或 ctx 结束。
	// ctx 先结束时返回 ctx.Err()，任务不受影响。
	Get(ctx context.Context) (T, error)

	// GetTimeout 最多等待 d，超时返回 [ErrTimeout]。
	GetTimeout(d time.Duration) (T, error)

	// Cancel 尝试取消任务。mayInterrupt 为 true 时会取消正在运行的任务的 ctx。
	// 任务已完成或已取消时返回 false。
	Cancel(mayInterrupt bool) bool

	IsCancelled() bool
	IsDone() bool

	// Done 返回任务完成时关闭的 channel。
	Done() <-chan struct{}
}

// ScheduledFuture 延迟或周期任务的结果句柄。
type ScheduledFuture[T any] interface {
	Future[T]

	// Delay 返回距下一次触发的剩余时间，已到期时为零或负数。
	Delay() time.Duration
}

// FailureSource 提供捕获到的失败，*xtask.WrappedRunnable 实现了该接口。
type FailureSource interface {
	Failure() error
}
