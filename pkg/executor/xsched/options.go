package xsched

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/xexec/pkg/util/xthread"
)

// Option 定义 ScheduledPool 可选配置函数类型。
type Option func(*options)

type options struct {
	logger   *slog.Logger
	name     string
	factory  xthread.Factory
	location *time.Location
	parser   cron.Parser
}

func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		location: time.Local,
		// 秒字段可选：5 段和 6 段表达式都能解析
		parser: cron.NewParser(
			cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		),
	}
}

// WithLogger 设置池内部日志使用的记录器，默认 slog.Default()，nil 被忽略。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置池名称，也是默认线程名的前缀。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithThreadFactory 设置 worker 身份工厂。
func WithThreadFactory(f xthread.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithLocation 设置 cron 表达式使用的时区，默认 time.Local。
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithParser 设置自定义 cron 解析器。
//
// 用法：
//
//	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
//	pool, err := xsched.New(1, xsched.WithParser(parser))
func WithParser(parser cron.Parser) Option {
	return func(o *options) {
		o.parser = parser
	}
}
