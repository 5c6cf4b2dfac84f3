package xfuture

import (
	"context"

	"github.com/omeyang/xexec/pkg/executor/xtask"
)

// Submit 通过 ex 异步执行 c，返回其结果句柄。
func Submit[T any](ex xtask.Executor, c xtask.Callable[T]) (Future[T], error) {
	if c == nil {
		return nil, xtask.ErrNilTask
	}
	task := NewTask(c)
	if err := ex.Execute(task); err != nil {
		return nil, err
	}
	return task, nil
}

// InvokeAll 执行全部 callables，等待它们全部完成后按提交顺序返回结果句柄。
//
// ctx 先结束时取消所有未完成的任务，返回已提交的句柄和 ctx.Err()。
// 某个任务提交失败时取消已提交的任务并返回该错误。
func InvokeAll[T any](ctx context.Context, ex xtask.Executor, callables []xtask.Callable[T]) ([]Future[T], error) {
	futures, err := submitAll(ex, callables)
	if err != nil {
		return nil, err
	}
	for i, f := range futures {
		select {
		case <-f.Done():
		case <-ctx.Done():
			cancelAll(futures[i:])
			return futures, ctx.Err()
		}
	}
	return futures, nil
}

// InvokeAny 执行全部 callables，返回第一个成功完成的结果，并取消其余任务。
// 全部失败时返回 *ExecutionError，Cause 为最后一个失败。
func InvokeAny[T any](ctx context.Context, ex xtask.Executor, callables []xtask.Callable[T]) (T, error) {
	var zero T
	if len(callables) == 0 {
		return zero, ErrNoTasks
	}
	futures, err := submitAll(ex, callables)
	if err != nil {
		return zero, err
	}
	defer cancelAll(futures)

	completed := make(chan Future[T], len(futures))
	for _, f := range futures {
		go func() {
			<-f.Done()
			completed <- f
		}()
	}

	var lastErr error
	for range futures {
		select {
		case f := <-completed:
			v, err := f.Get(ctx)
			if err == nil {
				return v, nil
			}
			lastErr = err
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, &ExecutionError{Cause: lastErr}
}

func submitAll[T any](ex xtask.Executor, callables []xtask.Callable[T]) ([]Future[T], error) {
	futures := make([]Future[T], 0, len(callables))
	for _, c := range callables {
		f, err := Submit(ex, c)
		if err != nil {
			cancelAll(futures)
			return nil, err
		}
		futures = append(futures, f)
	}
	return futures, nil
}

func cancelAll[T any](futures []Future[T]) {
	for _, f := range futures {
		f.Cancel(true)
	}
}
