package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key
const (
	KeyError     = "error"
	KeyThread    = "thread"
	KeyComponent = "component"
	KeyDuration  = "duration"
)

// Err 创建错误属性。
//
// 保留原始 error 对象而不是字符串，便于自定义 handler 取回 failure；
// 内置的 text/json handler 会输出 err.Error()。
// err 为 nil 时返回空属性（会被 slog 忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}

// Thread 创建执行线程属性
func Thread(name string) slog.Attr {
	return slog.String(KeyThread, name)
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Duration 创建耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}
