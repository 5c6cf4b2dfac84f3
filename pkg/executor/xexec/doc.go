// Package xexec 提供记录并保留任务失败的执行器。
//
// 两种执行器都以组合方式包装底层池，所有进入池的工作单元都先经过 xtask 的包装器：
//
//   - [LoggingExecutor] 包装 xpool.ThreadPool
//   - [FailsafeScheduledExecutor] 包装 xsched.ScheduledPool
//
// # 失败如何到达调用方
//
// 动作（xtask.Runnable）panic 时，包装器以 ERROR 记录
// "<thread> ended abnormally with an exception" 并把失败存入该次提交独有的失败槽。
// 返回的结果句柄在原生 future 完成后查询失败槽，Get 返回 *xfuture.ExecutionError，
// 其 Cause 是动作的 *xtask.PanicError。只调用 Execute、不持有句柄的调用方依然能在日志中看到失败。
//
// 计算（xtask.Callable）返回的 error 是预期内的失败：DEBUG 记录，
// 由原生 future 原样交给调用方。计算 panic 时 ERROR 记录后由原生 future 以 *xtask.PanicError 承载。
//
// # 周期任务
//
// 底层调度池在周期任务某次执行失败后不再调度它。FailsafeScheduledExecutor
// 包装每个周期动作，使其失败只被记录和捕获、不会到达调度池，
// 因此之后的执行照常进行，触发时间不受影响。
//
// # 快速开始
//
//	ex, err := xexec.NewFixedThreadPool(4, "worker")
//	if err != nil {
//		return err
//	}
//	defer ex.Close()
//
//	f, err := xexec.Submit(ex, xtask.CallableFunc[int](func(ctx context.Context) (int, error) {
//		return 42, nil
//	}))
//
// 执行器不依赖终结器释放资源，持有者必须调用 Close（或 Shutdown）。
package xexec
