// Package xrun 基于 errgroup 管理进程内长期运行的服务与退出流程。
//
// 任一服务返回错误、收到终止信号或父 context 结束时，组内所有服务的
// ctx 被取消。[Group.Wait] 优先返回显式的退出原因（例如 [*SignalError]）。
//
// 执行器以服务的形式加入组：
//
//	err := xrun.Run(ctx,
//	    xrun.Executor("pool", pool, 10*time.Second),
//	    xrun.Executor("scheduler", sched, 10*time.Second),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
//
// [Executor] 在 ctx 结束后依次调用 Shutdown、AwaitTermination，
// 宽限期内未终止时再调用 ShutdownNow 中断正在运行的任务。
package xrun
