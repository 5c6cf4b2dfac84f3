package xfuture

import (
	"context"
	"errors"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xtask"
)

// Adapt 把 src 捕获的失败挂到 delegate 上。
//
// 取消与状态查询直接转发。Get/GetTimeout 先等待 delegate，
// delegate 自身的错误原样返回；之后若 src 记录了失败，按以下规则返回：
//   - 中断错误和 *ExecutionError 原样返回
//   - 其他失败包装为 *ExecutionError
//
// src 为 nil 时返回 delegate 本身。
func Adapt[T any](delegate Future[T], src FailureSource) Future[T] {
	if src == nil {
		return delegate
	}
	return &adapter[T]{Future: delegate, src: src}
}

// AdaptScheduled 是 [Adapt] 的 ScheduledFuture 版本，Delay 直接转发。
func AdaptScheduled[T any](delegate ScheduledFuture[T], src FailureSource) ScheduledFuture[T] {
	if src == nil {
		return delegate
	}
	return &scheduledAdapter[T]{
		adapter:   adapter[T]{Future: delegate, src: src},
		scheduled: delegate,
	}
}

type adapter[T any] struct {
	Future[T]
	src FailureSource
}

func (a *adapter[T]) Get(ctx context.Context) (T, error) {
	v, err := a.Future.Get(ctx)
	if err != nil {
		return v, err
	}
	return a.check(v)
}

func (a *adapter[T]) GetTimeout(d time.Duration) (T, error) {
	v, err := a.Future.GetTimeout(d)
	if err != nil {
		return v, err
	}
	return a.check(v)
}

func (a *adapter[T]) check(v T) (T, error) {
	failure := a.src.Failure()
	if failure == nil {
		return v, nil
	}
	var zero T
	var ee *ExecutionError
	if xtask.IsInterrupt(failure) || errors.As(failure, &ee) {
		return zero, failure
	}
	return zero, &ExecutionError{Cause: failure}
}

type scheduledAdapter[T any] struct {
	adapter[T]
	scheduled ScheduledFuture[T]
}

func (a *scheduledAdapter[T]) Delay() time.Duration {
	return a.scheduled.Delay()
}
