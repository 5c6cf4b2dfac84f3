package xrun

import (
	"context"
	"errors"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xtask"
)

// Terminable 是可以关闭并等待终止的执行器。
type Terminable interface {
	Shutdown()
	ShutdownNow() []xtask.Runnable
	AwaitTermination(ctx context.Context) error
}

// Elapsed 返回在 d 之后以 [ErrElapsed] 结束整个组的服务函数。
// d <= 0 时一直等到 ctx 结束。
func Elapsed(d time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if d <= 0 {
			<-ctx.Done()
			return ctx.Err()
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return ErrElapsed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Executor 返回托管 ex 生命周期的服务函数。
//
// ctx 结束后调用 Shutdown 并最多等待 grace；超时则调用 ShutdownNow，
// 再等待正在运行的任务响应中断，返回 [ErrShutdownTimeout]。grace <= 0 表示一直等待。
func Executor(name string, ex Terminable, grace time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if ex == nil {
			return ErrNilExecutor
		}
		<-ctx.Done()
		ex.Shutdown()

		waitCtx := context.Background()
		if grace > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(waitCtx, grace)
			defer cancel()
		}
		err := ex.AwaitTermination(waitCtx)
		if err == nil {
			return ctx.Err()
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		dropped := ex.ShutdownNow()
		if err := ex.AwaitTermination(context.Background()); err != nil {
			return err
		}
		return &ShutdownError{Name: name, Dropped: len(dropped)}
	}
}

// ShutdownError 描述超时后被强制关闭的执行器。
type ShutdownError struct {
	Name    string
	Dropped int
}

func (e *ShutdownError) Error() string {
	return "xrun: executor " + e.Name + " did not terminate in time"
}

// Unwrap 返回 [ErrShutdownTimeout]。
func (e *ShutdownError) Unwrap() error {
	return ErrShutdownTimeout
}
