package xtask

import (
	"context"
	"log/slog"

	"github.com/omeyang/xexec/pkg/observability/xlog"
	"github.com/omeyang/xexec/pkg/observability/xmetrics"
)

// Logger 包装器使用的日志接口，兼容 xlog.Logger。
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)
}

// Option 包装器配置选项
type Option func(*options)

type options struct {
	logger   Logger
	observer xmetrics.Observer
	name     string
}

func newOptions(opts []Option) options {
	o := options{name: "task"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = xlog.Default()
	}
	return o
}

// WithLogger 设置日志记录器，默认 xlog.Default()。nil 被忽略。
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置观测器，每次执行产生一个跨度。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithName 设置任务名，用作观测跨度的 operation。默认 "task"。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
