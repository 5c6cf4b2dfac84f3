package xexec

import (
	"context"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xfuture"
	"github.com/omeyang/xexec/pkg/executor/xtask"
)

// Submit 提交计算并返回带类型的结果句柄。
func Submit[T any](s Service, c xtask.Callable[T]) (xfuture.Future[T], error) {
	if c == nil {
		return nil, xtask.ErrNilTask
	}
	f, err := s.SubmitCallable(xtask.Erase(c))
	if err != nil {
		return nil, err
	}
	return xfuture.Typed[T](f), nil
}

// SubmitWithResult 提交动作，成功后结果句柄返回 result。
func SubmitWithResult[T any](s Service, r xtask.Runnable, result T) (xfuture.Future[T], error) {
	f, err := s.SubmitWithResult(r, result)
	if err != nil {
		return nil, err
	}
	return xfuture.Typed[T](f), nil
}

// InvokeAll 执行全部计算，等待它们完成后按提交顺序返回带类型的结果句柄。
func InvokeAll[T any](ctx context.Context, s Service, callables []xtask.Callable[T]) ([]xfuture.Future[T], error) {
	erased, err := eraseAll(callables)
	if err != nil {
		return nil, err
	}
	futures, err := s.InvokeAll(ctx, erased)
	typed := make([]xfuture.Future[T], len(futures))
	for i, f := range futures {
		typed[i] = xfuture.Typed[T](f)
	}
	return typed, err
}

// InvokeAny 返回第一个成功完成的计算结果。
func InvokeAny[T any](ctx context.Context, s Service, callables []xtask.Callable[T]) (T, error) {
	erased, err := eraseAll(callables)
	if err != nil {
		var zero T
		return zero, err
	}
	v, err := s.InvokeAny(ctx, erased)
	if err != nil {
		var zero T
		return zero, err
	}
	return xfuture.Cast[T](v)
}

// Schedule 在 delay 之后执行计算，返回带类型的结果句柄。
func Schedule[T any](s ScheduledService, c xtask.Callable[T], delay time.Duration) (xfuture.ScheduledFuture[T], error) {
	if c == nil {
		return nil, xtask.ErrNilTask
	}
	f, err := s.ScheduleCallable(xtask.Erase(c), delay)
	if err != nil {
		return nil, err
	}
	return xfuture.TypedScheduled[T](f), nil
}

func eraseAll[T any](callables []xtask.Callable[T]) ([]xtask.Callable[any], error) {
	erased := make([]xtask.Callable[any], len(callables))
	for i, c := range callables {
		if c == nil {
			return nil, xtask.ErrNilTask
		}
		erased[i] = xtask.Erase(c)
	}
	return erased, nil
}
