package xtask

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrNilTask 表示提交的工作单元为 nil。
var ErrNilTask = errors.New("xtask: task cannot be nil")

// PanicError 承载工作单元 panic 的值及其堆栈。
type PanicError struct {
	Value any
	Stack []byte
}

// NewPanicError 由 recover() 的返回值构造 PanicError，并记录当前堆栈。
// 如果 v 本身已是 *PanicError，原样返回。
func NewPanicError(v any) *PanicError {
	if pe, ok := v.(*PanicError); ok {
		return pe
	}
	return &PanicError{Value: v, Stack: debug.Stack()}
}

// Error 实现 error 接口。
func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return "panic: " + err.Error()
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap 在 panic 值是 error 时返回它，使 errors.Is/As 能穿透。
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsInterrupt 报告 err 是否是中断信号（context 取消或超时）。
func IsInterrupt(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
