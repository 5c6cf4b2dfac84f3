package xtask

import (
	"context"
	"fmt"

	"github.com/omeyang/xexec/pkg/observability/xlog"
	"github.com/omeyang/xexec/pkg/observability/xmetrics"
	"github.com/omeyang/xexec/pkg/util/xthread"
)

const component = "xexec"

// WrappedRunnable 拦截动作的 panic，记录日志并写入 FailureCell。
type WrappedRunnable struct {
	runnable Runnable
	opts     options
	failure  FailureCell
}

// WrapRunnable 包装 r。r 已经是 *WrappedRunnable 时原样返回。
//
// 同一个 *WrappedRunnable 的所有执行共享一个 FailureCell：重复提交时，
// 后续结果句柄仍会报告第一次执行的失败。需要独立结果时，
// 用 WrapRunnable(w.Unwrap()) 为每次提交重新包装。
func WrapRunnable(r Runnable, opts ...Option) *WrappedRunnable {
	if w, ok := r.(*WrappedRunnable); ok {
		return w
	}
	return &WrappedRunnable{runnable: r, opts: newOptions(opts)}
}

func (w *WrappedRunnable) isWrapped() bool { return true }

// Failure 返回捕获到的第一个失败，尚未失败时为 nil。结果跨执行保留，不会被重置。
func (w *WrappedRunnable) Failure() error {
	return w.failure.Load()
}

// Unwrap 返回被包装的动作。
func (w *WrappedRunnable) Unwrap() Runnable {
	return w.runnable
}

// Run 执行动作。动作的 panic 不会离开 Run。
func (w *WrappedRunnable) Run(ctx context.Context) {
	thread := xthread.Current(ctx)
	ctx, span := xmetrics.Start(ctx, w.opts.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: w.opts.name,
		Attrs:     []xmetrics.Attr{xmetrics.String(xlog.KeyThread, thread.Name)},
	})

	err := w.run(ctx)
	if err != nil {
		w.opts.logger.Error(ctx, fmt.Sprintf("%s ended abnormally with an exception", thread),
			xlog.Thread(thread.Name), xlog.Err(err))
		w.failure.Set(err)
	}
	span.End(xmetrics.Result{Err: err})

	interrupted := "was not"
	if ctx.Err() != nil {
		interrupted = "was"
	}
	w.opts.logger.Debug(ctx, fmt.Sprintf("%s finished executing (%s interrupted)", thread, interrupted),
		xlog.Thread(thread.Name))
}

func (w *WrappedRunnable) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewPanicError(r)
		}
	}()
	w.runnable.Run(ctx)
	return nil
}

// WrappedCallable 记录计算的失败并原样交还给原生 future。
type WrappedCallable[T any] struct {
	callable Callable[T]
	opts     options
}

// WrapCallable 包装 c。c 已经被包装过时原样返回。
func WrapCallable[T any](c Callable[T], opts ...Option) Callable[T] {
	if IsWrapped(c) {
		return c
	}
	return &WrappedCallable[T]{callable: c, opts: newOptions(opts)}
}

func (w *WrappedCallable[T]) isWrapped() bool { return true }

// Call 执行计算。
//
// 返回的 error 是预期内的失败：DEBUG 记录后原样返回。
// panic 是预期外的失败：ERROR 记录后以同一个值重新 panic。
func (w *WrappedCallable[T]) Call(ctx context.Context) (v T, err error) {
	thread := xthread.Current(ctx)
	ctx, span := xmetrics.Start(ctx, w.opts.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: w.opts.name,
		Attrs:     []xmetrics.Attr{xmetrics.String(xlog.KeyThread, thread.Name)},
	})
	msg := fmt.Sprintf("%s ended with an exception", thread)

	defer func() {
		if r := recover(); r != nil {
			pe := NewPanicError(r)
			w.opts.logger.Error(ctx, msg, xlog.Thread(thread.Name), xlog.Err(pe))
			span.End(xmetrics.Result{Err: pe})
			w.opts.logger.Debug(ctx, fmt.Sprintf("%s finished executing", thread), xlog.Thread(thread.Name))
			panic(pe)
		}
		if err != nil {
			w.opts.logger.Debug(ctx, msg, xlog.Thread(thread.Name), xlog.Err(err))
		}
		span.End(xmetrics.Result{Err: err})
		w.opts.logger.Debug(ctx, fmt.Sprintf("%s finished executing", thread), xlog.Thread(thread.Name))
	}()

	return w.callable.Call(ctx)
}
