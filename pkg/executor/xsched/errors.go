package xsched

import "errors"

var (
	// ErrInvalidThreads 表示 worker 数量无效。
	ErrInvalidThreads = errors.New("xsched: invalid thread count")

	// ErrInvalidPeriod 表示周期或间隔无效（必须为正数）。
	ErrInvalidPeriod = errors.New("xsched: period must be positive")

	// ErrInvalidCronSpec 表示 cron 表达式无法解析，或不会匹配任何未来时间。
	ErrInvalidCronSpec = errors.New("xsched: invalid cron spec")
)
