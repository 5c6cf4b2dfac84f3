// Package xthread 为执行器的 worker 提供可读的线程标识。
//
// Go 没有线程身份，xthread 用 [Thread] 模拟：每个 worker goroutine
// 由 [Factory] 创建一个带编号的 Thread，并通过 context 传递给它执行的任务。
// 任务包装器据此在日志中标识失败发生在哪个 worker 上。
//
// 用法：
//
//	f := xthread.NewNamedFactory("orders")
//	th := f.NewThread() // orders-1
//	ctx := xthread.NewContext(ctx, th)
//	xthread.Current(ctx).Name // "orders-1"
package xthread
