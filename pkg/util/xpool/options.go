package xpool

import (
	"log/slog"

	"github.com/omeyang/xexec/pkg/util/xthread"
)

// Option 定义 ThreadPool 可选配置函数类型。
type Option func(*options)

type options struct {
	logger  *slog.Logger
	name    string
	factory xthread.Factory
	policy  RejectionPolicy
}

func defaultOptions() options {
	return options{
		logger: slog.Default(),
		policy: AbortPolicy{},
	}
}

// WithLogger 设置池内部日志（worker panic、任务丢弃）使用的记录器。
// 默认使用 slog.Default()。传入 nil 将被忽略，保持使用默认值。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置 pool 名称，用于区分日志来源，也是默认线程名的前缀。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithThreadFactory 设置 worker 身份工厂。
// 默认使用 xthread.NewNamedFactory(name)。
func WithThreadFactory(f xthread.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithRejectionPolicy 设置拒绝策略，默认 [AbortPolicy]。
func WithRejectionPolicy(p RejectionPolicy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}
