package xpool

import (
	"fmt"
	"sync"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xtask"
)

const (
	// MaxPoolSize worker 数上限。
	MaxPoolSize = 1 << 16
	// MaxQueueSize 有界队列容量上限。
	MaxQueueSize = 1 << 24

	// DefaultCachedKeepAlive 缓存池中空闲 worker 的默认存活时间。
	DefaultCachedKeepAlive = 60 * time.Second
)

type queueKind uint8

const (
	queueUnbounded queueKind = iota
	queueBounded
	queueSynchronous
)

// Queue 描述工作队列的纪律，零值为无界队列。
type Queue struct {
	kind     queueKind
	capacity int
}

// Unbounded 无界 FIFO 队列。
func Unbounded() Queue {
	return Queue{kind: queueUnbounded}
}

// Bounded 容量为 n 的 FIFO 队列，n 的有效范围为 [1, MaxQueueSize]。
func Bounded(n int) Queue {
	return Queue{kind: queueBounded, capacity: n}
}

// Synchronous 直接交接队列：只有空闲 worker 正在等待时才接收任务。
func Synchronous() Queue {
	return Queue{kind: queueSynchronous}
}

// String 返回队列纪律的描述。
func (q Queue) String() string {
	switch q.kind {
	case queueBounded:
		return fmt.Sprintf("bounded(%d)", q.capacity)
	case queueSynchronous:
		return "synchronous"
	default:
		return "unbounded"
	}
}

func (q Queue) validate() error {
	if q.kind == queueBounded && (q.capacity < 1 || q.capacity > MaxQueueSize) {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidQueueSize, q.capacity, MaxQueueSize)
	}
	return nil
}

type pollResult uint8

const (
	pollOK pollResult = iota
	pollTimeout
	pollClosed
)

// taskQueue 是 worker 共享的工作队列。
// 空闲 worker 登记为 waiter，offer 优先交给最早登记的 waiter。
type taskQueue struct {
	mu       sync.Mutex
	kind     queueKind
	capacity int
	items    []xtask.Runnable
	waiters  []chan xtask.Runnable
	closed   bool
}

func newTaskQueue(q Queue) *taskQueue {
	return &taskQueue{kind: q.kind, capacity: q.capacity}
}

func (q *taskQueue) offer(r xtask.Runnable) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	if len(q.waiters) > 0 {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		w <- r
		return true
	}
	switch q.kind {
	case queueSynchronous:
		return false
	case queueBounded:
		if len(q.items) >= q.capacity {
			return false
		}
	}
	q.items = append(q.items, r)
	return true
}

// poll 取出一个任务。timeout < 0 表示无限等待。
// 队列关闭且为空时返回 pollClosed。
func (q *taskQueue) poll(timeout time.Duration) (xtask.Runnable, pollResult) {
	q.mu.Lock()
	if r, ok := q.popLocked(); ok {
		q.mu.Unlock()
		return r, pollOK
	}
	if q.closed {
		q.mu.Unlock()
		return nil, pollClosed
	}
	ch := make(chan xtask.Runnable, 1)
	q.waiters = append(q.waiters, ch)
	q.mu.Unlock()

	var timeoutC <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case r, ok := <-ch:
		if !ok {
			return nil, pollClosed
		}
		return r, pollOK
	case <-timeoutC:
	}

	q.mu.Lock()
	removed := q.removeWaiterLocked(ch)
	q.mu.Unlock()
	if removed {
		return nil, pollTimeout
	}
	// 超时与交接同时发生：任务已经在 ch 中
	r, ok := <-ch
	if !ok {
		return nil, pollClosed
	}
	return r, pollOK
}

func (q *taskQueue) popLocked() (xtask.Runnable, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	r := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return r, true
}

func (q *taskQueue) removeWaiterLocked(ch chan xtask.Runnable) bool {
	for i, w := range q.waiters {
		if w == ch {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// pollFirst 丢弃并返回队首任务。
func (q *taskQueue) pollFirst() (xtask.Runnable, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// drain 取出所有排队任务。
func (q *taskQueue) drain() []xtask.Runnable {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// close 拒绝之后的 offer 并唤醒所有等待中的 worker。已排队的任务仍可被 poll。
func (q *taskQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for _, w := range q.waiters {
		close(w)
	}
	q.waiters = nil
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
