// Package xpool 提供执行器底层的线程池 [ThreadPool]。
//
// ThreadPool 按经典的 core/max 语义管理 worker goroutine：
//   - 提交时 worker 数少于 core，新建 worker 执行该任务
//   - 否则放入工作队列
//   - 队列拒绝时 worker 数少于 max，新建 worker 执行该任务
//   - 否则交给拒绝策略（[AbortPolicy]、[CallerRunsPolicy]、[DiscardPolicy]、[DiscardOldestPolicy]）
//
// 超过 core 的 worker 空闲 keepAlive 后退出。
//
// 工作队列有三种纪律：
//   - [Unbounded]：无界 FIFO，max 不再起作用
//   - [Bounded]：有界 FIFO
//   - [Synchronous]：直接交接，只有空闲 worker 在等待时才接收任务
//
// # 线程身份
//
// 每个 worker 通过 xthread.Factory 获得身份（默认 "pool-1"、"pool-2"...），
// 任务通过 xthread.Current(ctx) 读取。
//
// # panic
//
// 逃出任务的 panic 在 worker 层被恢复并以 "xpool: worker panic recovered" 记录，
// worker 继续服务。池不会把 panic 转交给任何结果句柄。
//
// # 关闭
//
//   - Shutdown：不再接收新任务，已排队的任务继续执行
//   - ShutdownNow：取出所有排队任务并返回，取消正在运行任务的 ctx
//   - AwaitTermination：等待所有 worker 退出
//   - Close：Shutdown 后等待终止，实现 io.Closer
//
// Close/AwaitTermination 不可在任务内调用，否则会死锁。
package xpool
