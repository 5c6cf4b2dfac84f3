package xpool

import (
	"fmt"

	"github.com/omeyang/xexec/pkg/executor/xtask"
)

// RejectionPolicy 处理池无法接收的任务。
// 返回的 error 作为 Execute 的结果。
type RejectionPolicy interface {
	Rejected(r xtask.Runnable, p *ThreadPool) error
}

// AbortPolicy 返回 [ErrRejected]；池已关闭时返回 [ErrPoolStopped]。
type AbortPolicy struct{}

// Rejected 实现 [RejectionPolicy]。
func (AbortPolicy) Rejected(_ xtask.Runnable, p *ThreadPool) error {
	if p.IsShutdown() {
		return ErrPoolStopped
	}
	return fmt.Errorf("%w: %s", ErrRejected, p.describe())
}

// CallerRunsPolicy 在提交者的 goroutine 中直接执行任务。
// 池已关闭时返回 [ErrPoolStopped]。
type CallerRunsPolicy struct{}

// Rejected 实现 [RejectionPolicy]。
func (CallerRunsPolicy) Rejected(r xtask.Runnable, p *ThreadPool) error {
	if p.IsShutdown() {
		return ErrPoolStopped
	}
	p.runInCaller(r)
	return nil
}

// DiscardPolicy 静默丢弃任务。
type DiscardPolicy struct{}

// Rejected 实现 [RejectionPolicy]。
func (DiscardPolicy) Rejected(_ xtask.Runnable, p *ThreadPool) error {
	p.opts.logger.Debug("xpool: task discarded")
	return nil
}

// DiscardOldestPolicy 丢弃队首任务后重新提交；池已关闭时静默丢弃。
type DiscardOldestPolicy struct{}

// Rejected 实现 [RejectionPolicy]。
func (DiscardOldestPolicy) Rejected(r xtask.Runnable, p *ThreadPool) error {
	if p.IsShutdown() {
		return nil
	}
	if _, ok := p.queue.pollFirst(); !ok {
		// 队列为空（如直接交接队列）时没有可丢弃的任务
		return fmt.Errorf("%w: %s", ErrRejected, p.describe())
	}
	p.opts.logger.Debug("xpool: oldest queued task discarded")
	return p.Execute(r)
}

func (p *ThreadPool) describe() string {
	s := p.Stats()
	return fmt.Sprintf("pool size %d, active %d, queued %d", s.PoolSize, s.ActiveCount, s.QueueSize)
}

