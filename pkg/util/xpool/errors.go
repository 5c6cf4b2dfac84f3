package xpool

import "errors"

var (
	// ErrPoolStopped 表示池已关闭，无法提交任务。
	ErrPoolStopped = errors.New("xpool: pool is stopped")

	// ErrRejected 表示任务被拒绝（队列已满且 worker 数达到上限）。
	ErrRejected = errors.New("xpool: task rejected")

	// ErrInvalidCoreSize 表示 core 大小无效。
	ErrInvalidCoreSize = errors.New("xpool: invalid core pool size")

	// ErrInvalidMaxSize 表示 max 大小无效。
	ErrInvalidMaxSize = errors.New("xpool: invalid max pool size")

	// ErrInvalidKeepAlive 表示空闲存活时间无效。
	ErrInvalidKeepAlive = errors.New("xpool: invalid keep-alive")

	// ErrInvalidQueueSize 表示队列大小无效。
	ErrInvalidQueueSize = errors.New("xpool: invalid queue size")
)
