package xpool

// Stats 是池的运行快照，各字段独立读取，彼此之间不保证一致。
type Stats struct {
	PoolSize           int
	ActiveCount        int
	LargestPoolSize    int
	QueueSize          int
	TaskCount          int64
	CompletedTaskCount int64
}

// Stats 返回当前快照。
func (p *ThreadPool) Stats() Stats {
	p.mu.Lock()
	size, largest := p.workers, p.largest
	p.mu.Unlock()
	return Stats{
		PoolSize:           size,
		ActiveCount:        int(p.active.Load()),
		LargestPoolSize:    largest,
		QueueSize:          p.queue.len(),
		TaskCount:          p.taskCount.Load(),
		CompletedTaskCount: p.completed.Load(),
	}
}
