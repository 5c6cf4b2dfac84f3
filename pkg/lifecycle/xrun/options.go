package xrun

import (
	"log/slog"
	"os"
	"syscall"
)

// Option 配置 Group。
type Option func(*groupOptions)

type groupOptions struct {
	logger          *slog.Logger
	name            string
	signals         []os.Signal
	noSignalHandler bool

	// sigCh 非 nil 时代替 signal.Notify 作为信号来源。
	sigCh <-chan os.Signal
}

func newGroupOptions(opts []Option) *groupOptions {
	o := &groupOptions{logger: slog.Default(), name: "xrun"}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// DefaultSignals 返回默认监听的信号：SIGHUP、SIGINT、SIGTERM、SIGQUIT。
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
}

// WithLogger 设置生命周期日志的记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置日志中的组名，默认 "xrun"。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 覆盖 [Run] 监听的信号。空列表等同于默认列表。
func WithSignals(signals ...os.Signal) Option {
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithoutSignalHandler 关闭 [Run] 的信号监听。
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}

func withSignalChan(c <-chan os.Signal) Option {
	return func(o *groupOptions) {
		o.sigCh = c
	}
}
