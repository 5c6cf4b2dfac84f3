package xtask

import "sync/atomic"

// FailureCell 写一次、读多次的失败槽。
//
// 第一次写入的失败生效，之后的写入被忽略。
// 基于 atomic.Pointer，worker 写入后调用方读取一定能观察到（release/acquire）。
type FailureCell struct {
	p atomic.Pointer[error]
}

// Set 写入失败，返回是否写入成功。nil 和重复写入都返回 false。
func (c *FailureCell) Set(err error) bool {
	if err == nil {
		return false
	}
	return c.p.CompareAndSwap(nil, &err)
}

// Load 返回已写入的失败；尚未失败时返回 nil。
func (c *FailureCell) Load() error {
	if p := c.p.Load(); p != nil {
		return *p
	}
	return nil
}
