package xexec

import "errors"

var (
	// ErrInvalidConfig 表示执行器配置无效。
	ErrInvalidConfig = errors.New("xexec: invalid config")

	// ErrUnknownQueue 表示未知的队列类型。
	ErrUnknownQueue = errors.New("xexec: unknown queue kind")

	// ErrUnknownRejection 表示未知的拒绝策略。
	ErrUnknownRejection = errors.New("xexec: unknown rejection policy")
)
