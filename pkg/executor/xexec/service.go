package xexec

import (
	"context"
	"io"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xfuture"
	"github.com/omeyang/xexec/pkg/executor/xsched"
	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/util/xpool"
)

// Service 执行器的提交与生命周期接口。
//
// 方法是类型擦除的；需要具体结果类型时使用 [Submit]、[SubmitWithResult]、
// [InvokeAll]、[InvokeAny] 等泛型函数。
type Service interface {
	xtask.Executor
	io.Closer

	Submit(r xtask.Runnable) (xfuture.Future[any], error)
	SubmitWithResult(r xtask.Runnable, result any) (xfuture.Future[any], error)
	SubmitCallable(c xtask.Callable[any]) (xfuture.Future[any], error)
	InvokeAll(ctx context.Context, callables []xtask.Callable[any]) ([]xfuture.Future[any], error)
	InvokeAny(ctx context.Context, callables []xtask.Callable[any]) (any, error)

	Shutdown()
	ShutdownNow() []xtask.Runnable
	IsShutdown() bool
	IsTerminated() bool
	AwaitTermination(ctx context.Context) error
}

// ScheduledService 在 [Service] 之上增加延迟与周期调度。
type ScheduledService interface {
	Service

	Schedule(r xtask.Runnable, delay time.Duration) (xfuture.ScheduledFuture[any], error)
	ScheduleCallable(c xtask.Callable[any], delay time.Duration) (xfuture.ScheduledFuture[any], error)
	ScheduleAtFixedRate(r xtask.Runnable, initialDelay, period time.Duration) (xfuture.ScheduledFuture[any], error)
	ScheduleWithFixedDelay(r xtask.Runnable, initialDelay, delay time.Duration) (xfuture.ScheduledFuture[any], error)
	ScheduleCron(r xtask.Runnable, spec string) (xfuture.ScheduledFuture[any], error)
}

// StatsSource 提供池的运行快照。
type StatsSource interface {
	Stats() xpool.Stats
}

// 编译期断言：未包装的池与包装后的执行器可以互相替换。
var (
	_ Service          = (*xpool.ThreadPool)(nil)
	_ ScheduledService = (*xsched.ScheduledPool)(nil)
	_ Service          = (*LoggingExecutor)(nil)
	_ ScheduledService = (*FailsafeScheduledExecutor)(nil)
	_ StatsSource      = (*LoggingExecutor)(nil)
	_ StatsSource      = (*FailsafeScheduledExecutor)(nil)
)
