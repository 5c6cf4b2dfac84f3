package xsched

import (
	"container/heap"
	"sync"
	"time"
)

// taskHeap 按 (触发时间, 序号) 排序的最小堆。
type taskHeap []*scheduledTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	ti, tj := h[i].at.Load(), h[j].at.Load()
	if ti != tj {
		return ti < tj
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*scheduledTask)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// delayQueue 延迟队列：只有触发时间已到的任务才能被取出。
// 队首变化或队列关闭时关闭 changed，唤醒所有等待中的 worker。
type delayQueue struct {
	mu      sync.Mutex
	h       taskHeap
	changed chan struct{}
	closed  bool
}

func newDelayQueue() *delayQueue {
	return &delayQueue{changed: make(chan struct{})}
}

func (q *delayQueue) broadcastLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}

func (q *delayQueue) push(t *scheduledTask) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	heap.Push(&q.h, t)
	if t.index == 0 {
		q.broadcastLocked()
	}
	return true
}

// take 阻塞直到队首任务到期。队列关闭且为空时返回 false。
func (q *delayQueue) take() (*scheduledTask, bool) {
	for {
		q.mu.Lock()
		if len(q.h) == 0 {
			if q.closed {
				q.mu.Unlock()
				return nil, false
			}
			changed := q.changed
			q.mu.Unlock()
			<-changed
			continue
		}
		head := q.h[0]
		wait := time.Until(time.Unix(0, head.at.Load()))
		if wait <= 0 {
			heap.Pop(&q.h)
			q.mu.Unlock()
			return head, true
		}
		changed := q.changed
		q.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-changed:
		case <-timer.C:
		}
		timer.Stop()
	}
}

func (q *delayQueue) remove(t *scheduledTask) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t.index < 0 || t.index >= len(q.h) || q.h[t.index] != t {
		return false
	}
	heap.Remove(&q.h, t.index)
	q.broadcastLocked()
	return true
}

// removeIf 移除并返回所有满足 pred 的任务。
func (q *delayQueue) removeIf(pred func(*scheduledTask) bool) []*scheduledTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	var removed []*scheduledTask
	kept := q.h[:0]
	for _, t := range q.h {
		if pred(t) {
			t.index = -1
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(q.h); i++ {
		q.h[i] = nil
	}
	q.h = kept
	for i, t := range q.h {
		t.index = i
	}
	heap.Init(&q.h)
	if len(removed) > 0 {
		q.broadcastLocked()
	}
	return removed
}

func (q *delayQueue) drain() []*scheduledTask {
	return q.removeIf(func(*scheduledTask) bool { return true })
}

func (q *delayQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.broadcastLocked()
}

func (q *delayQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}
