package xtask

import "context"

// Runnable 无返回值的工作单元。
// ctx 携带执行线程（见 xthread），ctx 被取消表示任务被中断。
type Runnable interface {
	Run(ctx context.Context)
}

// RunnableFunc 函数适配器，将普通函数转换为 [Runnable]。
type RunnableFunc func(ctx context.Context)

// Run 实现 [Runnable] 接口。
func (f RunnableFunc) Run(ctx context.Context) {
	f(ctx)
}

// Callable 产生值的工作单元。
type Callable[T any] interface {
	Call(ctx context.Context) (T, error)
}

// CallableFunc 函数适配器，将普通函数转换为 [Callable]。
type CallableFunc[T any] func(ctx context.Context) (T, error)

// Call 实现 [Callable] 接口。
func (f CallableFunc[T]) Call(ctx context.Context) (T, error) {
	return f(ctx)
}

// Executor 接收 Runnable 并安排执行。
type Executor interface {
	Execute(r Runnable) error
}

// Adapt 把动作和固定结果组合成 Callable：先运行 r，再返回 result。
// 池用它实现"动作加固定结果"的提交形式。
func Adapt[T any](r Runnable, result T) Callable[T] {
	return &runnableAdapter[T]{runnable: r, result: result}
}

type runnableAdapter[T any] struct {
	runnable Runnable
	result   T
}

func (a *runnableAdapter[T]) Call(ctx context.Context) (T, error) {
	a.runnable.Run(ctx)
	return a.result, nil
}

// Runnable 返回被适配的动作。
func (a *runnableAdapter[T]) Runnable() Runnable {
	return a.runnable
}

// Erase 把 Callable[T] 擦除为 Callable[any]。
// 擦除后的 Callable 继承内层的已包装标记。
func Erase[T any](c Callable[T]) Callable[any] {
	if e, ok := any(c).(Callable[any]); ok {
		return e
	}
	return &erased[T]{inner: c}
}

type erased[T any] struct {
	inner Callable[T]
}

func (e *erased[T]) Call(ctx context.Context) (any, error) {
	return e.inner.Call(ctx)
}

func (e *erased[T]) isWrapped() bool {
	return IsWrapped(e.inner)
}

// marker 已包装标记
type marker interface {
	isWrapped() bool
}

// IsWrapped 报告 x 是否已经过本包的包装器。
func IsWrapped(x any) bool {
	m, ok := x.(marker)
	return ok && m.isWrapped()
}
