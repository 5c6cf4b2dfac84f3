package xfuture

import (
	"context"
	"fmt"
	"time"
)

// Typed 把类型擦除的 Future 还原为 Future[T]。
// 结果无法断言为 T 时 Get 返回包装了 [ErrResultType] 的错误。
func Typed[T any](f Future[any]) Future[T] {
	if tf, ok := any(f).(Future[T]); ok {
		return tf
	}
	return &typed[T]{f: f}
}

// TypedScheduled 是 [Typed] 的 ScheduledFuture 版本。
func TypedScheduled[T any](f ScheduledFuture[any]) ScheduledFuture[T] {
	if tf, ok := any(f).(ScheduledFuture[T]); ok {
		return tf
	}
	return &typedScheduled[T]{typed: typed[T]{f: f}, scheduled: f}
}

type typed[T any] struct {
	f Future[any]
}

func (t *typed[T]) Get(ctx context.Context) (T, error) {
	return assertResult[T](t.f.Get(ctx))
}

func (t *typed[T]) GetTimeout(d time.Duration) (T, error) {
	return assertResult[T](t.f.GetTimeout(d))
}

func (t *typed[T]) Cancel(mayInterrupt bool) bool { return t.f.Cancel(mayInterrupt) }
func (t *typed[T]) IsCancelled() bool             { return t.f.IsCancelled() }
func (t *typed[T]) IsDone() bool                  { return t.f.IsDone() }
func (t *typed[T]) Done() <-chan struct{}         { return t.f.Done() }

type typedScheduled[T any] struct {
	typed[T]
	scheduled ScheduledFuture[any]
}

func (t *typedScheduled[T]) Delay() time.Duration {
	return t.scheduled.Delay()
}

func assertResult[T any](v any, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return Cast[T](v)
}

// Cast 把类型擦除的结果断言为 T。nil 转换为 T 的零值。
func Cast[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	tv, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrResultType, v, zero)
	}
	return tv, nil
}
