package xsched

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/xexec/pkg/executor/xfuture"
)

// scheduledTask 是延迟队列中的任务，同时是调用方持有的 ScheduledFuture。
type scheduledTask struct {
	*xfuture.Task[any]

	pool *ScheduledPool
	seq  uint64
	// at 下一次触发时间（UnixNano）
	at atomic.Int64
	// period > 0 固定频率，< 0 固定延迟，0 一次性
	period   time.Duration
	schedule cron.Schedule

	// index 堆下标，受 delayQueue.mu 保护
	index int
}

var _ xfuture.ScheduledFuture[any] = (*scheduledTask)(nil)

func (t *scheduledTask) periodic() bool {
	return t.period != 0 || t.schedule != nil
}

// Delay 实现 xfuture.ScheduledFuture。
func (t *scheduledTask) Delay() time.Duration {
	return time.Until(time.Unix(0, t.at.Load()))
}

// Cancel 取消任务并将其移出延迟队列。
func (t *scheduledTask) Cancel(mayInterrupt bool) bool {
	cancelled := t.Task.Cancel(mayInterrupt)
	if cancelled {
		t.pool.queue.remove(t)
	}
	return cancelled
}

// Run 执行一次触发。周期任务成功后计算下一次触发时间并重新入队。
func (t *scheduledTask) Run(ctx context.Context) {
	if !t.periodic() {
		t.Task.Run(ctx)
		return
	}
	if !t.pool.running() {
		t.Task.Cancel(false)
		return
	}
	if !t.Task.RunAndReset(ctx) {
		return
	}
	if !t.setNextRunTime() {
		// cron 表达式之后不再匹配任何时间
		t.Task.Cancel(false)
		return
	}
	t.pool.reExecutePeriodic(t)
}

// setNextRunTime 计算下一次触发时间，没有下一次时返回 false。
func (t *scheduledTask) setNextRunTime() bool {
	switch {
	case t.schedule != nil:
		next := t.schedule.Next(time.Now().In(t.pool.opts.location))
		if next.IsZero() {
			return false
		}
		t.at.Store(next.UnixNano())
	case t.period > 0:
		t.at.Store(triggerTime(t.at.Load(), t.period))
	default:
		t.at.Store(triggerTime(time.Now().UnixNano(), -t.period))
	}
	return true
}

// triggerTime 返回 base 之后 d 的 UnixNano 时间，溢出时饱和为 math.MaxInt64。
func triggerTime(base int64, d time.Duration) int64 {
	if d <= 0 {
		return base
	}
	if base > math.MaxInt64-int64(d) {
		return math.MaxInt64
	}
	return base + int64(d)
}
