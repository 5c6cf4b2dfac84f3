package xexec

import (
	"log/slog"

	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/observability/xmetrics"
	"github.com/omeyang/xexec/pkg/util/xpool"
	"github.com/omeyang/xexec/pkg/util/xthread"
)

// Option 执行器配置选项
type Option func(*options)

type options struct {
	logger     xtask.Logger
	observer   xmetrics.Observer
	factory    xthread.Factory
	policy     xpool.RejectionPolicy
	poolLogger *slog.Logger
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLogger 设置任务失败与完成日志的记录器，默认 xlog.Default()。
func WithLogger(l xtask.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver 设置观测器，每次任务执行产生一个跨度。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithThreadFactory 设置 worker 身份工厂，优先于配置中的名称。
func WithThreadFactory(f xthread.Factory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithRejectionPolicy 设置拒绝策略，优先于配置中的策略。调度执行器忽略该选项。
func WithRejectionPolicy(p xpool.RejectionPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithPoolLogger 设置底层池内部日志的记录器。
func WithPoolLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.poolLogger = l
	}
}

// wrapOptions 生成一次提交的包装器选项，operation 作为观测跨度的名称。
func (o options) wrapOptions(operation string) []xtask.Option {
	opts := []xtask.Option{xtask.WithName(operation)}
	if o.logger != nil {
		opts = append(opts, xtask.WithLogger(o.logger))
	}
	if o.observer != nil {
		opts = append(opts, xtask.WithObserver(o.observer))
	}
	return opts
}
