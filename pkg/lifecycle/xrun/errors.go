package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 表示因收到系统信号而退出，配合 errors.Is 使用。
	ErrSignal = errors.New("received signal")

	// ErrElapsed 表示 [Elapsed] 设置的运行时长已到。
	ErrElapsed = errors.New("xrun: run duration elapsed")

	// ErrNilFunc 表示向 Group 提交了 nil 服务函数。
	ErrNilFunc = errors.New("xrun: nil service func")

	// ErrNilExecutor 表示 [Executor] 收到 nil 执行器。
	ErrNilExecutor = errors.New("xrun: nil executor")

	// ErrShutdownTimeout 表示执行器未在宽限期内终止。
	ErrShutdownTimeout = errors.New("xrun: executor did not terminate in time")
)

// SignalError 记录触发退出的信号。
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	if e.Signal == nil {
		return "received signal <nil>"
	}
	return fmt.Sprintf("received signal %s", e.Signal)
}

// Unwrap 返回 [ErrSignal]。
func (e *SignalError) Unwrap() error {
	return ErrSignal
}
