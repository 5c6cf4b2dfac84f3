package xfuture

import (
	"context"
	"sync"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xtask"
)

type state uint8

const (
	stateNew state = iota
	stateNormal
	stateExceptional
	stateCancelled
	stateInterrupted
)

// Task 可取消的异步计算，池中原生 future 的实现。
//
// Task 只会运行一次（[Task.RunAndReset] 除外）；在运行前被取消的 Task 不会运行。
type Task[T any] struct {
	callable xtask.Callable[T]

	mu        sync.Mutex
	state     state
	running   bool
	cancelRun context.CancelFunc
	value     T
	err       error

	done chan struct{}
}

// NewTask 创建运行 c 的 Task。
func NewTask[T any](c xtask.Callable[T]) *Task[T] {
	return &Task[T]{callable: c, done: make(chan struct{})}
}

// NewRunnableTask 创建运行 r、成功后返回 result 的 Task。
func NewRunnableTask[T any](r xtask.Runnable, result T) *Task[T] {
	return NewTask(xtask.Adapt(r, result))
}

// Callable 返回 Task 运行的计算。
func (t *Task[T]) Callable() xtask.Callable[T] {
	return t.callable
}

// Run 运行计算并保存结果。
func (t *Task[T]) Run(ctx context.Context) {
	runCtx, ok := t.start(ctx)
	if !ok {
		return
	}
	v, err := t.call(runCtx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.finishLocked()
	if t.state != stateNew {
		return
	}
	t.value, t.err = v, err
	if err != nil {
		t.state = stateExceptional
	} else {
		t.state = stateNormal
	}
	close(t.done)
}

// RunAndReset 运行计算但不保存结果，供周期任务使用。
//
// 成功时 Task 保持未完成，可以再次运行，返回 true。
// 失败时 Task 以该失败完成并返回 false，之后不应再运行。
func (t *Task[T]) RunAndReset(ctx context.Context) bool {
	runCtx, ok := t.start(ctx)
	if !ok {
		return false
	}
	_, err := t.call(runCtx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.finishLocked()
	if t.state != stateNew {
		return false
	}
	if err != nil {
		t.err = err
		t.state = stateExceptional
		close(t.done)
		return false
	}
	return true
}

func (t *Task[T]) start(ctx context.Context) (context.Context, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateNew || t.running {
		return nil, false
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.running = true
	t.cancelRun = cancel
	return runCtx, true
}

func (t *Task[T]) finishLocked() {
	t.running = false
	if t.cancelRun != nil {
		t.cancelRun()
		t.cancelRun = nil
	}
}

func (t *Task[T]) call(ctx context.Context) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = xtask.NewPanicError(r)
		}
	}()
	return t.callable.Call(ctx)
}

// Cancel 实现 [Future]。
func (t *Task[T]) Cancel(mayInterrupt bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateNew {
		return false
	}
	t.state = stateCancelled
	if mayInterrupt {
		t.state = stateInterrupted
		if t.cancelRun != nil {
			t.cancelRun()
		}
	}
	close(t.done)
	return true
}

// IsCancelled 实现 [Future]。
func (t *Task[T]) IsCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateCancelled || t.state == stateInterrupted
}

// IsDone 实现 [Future]。
func (t *Task[T]) IsDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != stateNew
}

// Done 实现 [Future]。
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Get 实现 [Future]。
func (t *Task[T]) Get(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-t.done:
	default:
		select {
		case <-t.done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	return t.report()
}

// GetTimeout 实现 [Future]。
func (t *Task[T]) GetTimeout(d time.Duration) (T, error) {
	select {
	case <-t.done:
		return t.report()
	default:
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.done:
		return t.report()
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}

func (t *Task[T]) report() (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	switch t.state {
	case stateNormal:
		return t.value, nil
	case stateExceptional:
		return zero, t.err
	default:
		return zero, ErrCancelled
	}
}
