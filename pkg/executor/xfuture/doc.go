// Package xfuture 提供结果句柄：原生 future 任务 [Task]，以及把包装器捕获的
// 失败重新挂到句柄上的结果句柄适配器 [Adapt]。
//
// # 原生 future
//
// [Task] 同时是 xtask.Runnable 和 [Future]：池把它交给 worker 执行，
// 调用方持有它等待结果。计算返回的 error 原样保存；panic 以 *xtask.PanicError 保存。
//
// # 结果句柄适配器
//
// 被 xtask.WrapRunnable 包装的动作不会让原生 future 失败。
// [Adapt] 在原生 future 完成后查询包装器的失败槽：
//
//	future := xfuture.Adapt(native, wrapped)
//	_, err := future.Get(ctx)
//	var ee *xfuture.ExecutionError
//	if errors.As(err, &ee) {
//		// ee.Cause 是动作的 *xtask.PanicError
//	}
//
// 中断错误（context.Canceled、context.DeadlineExceeded）和 *ExecutionError 原样返回，
// 其他失败包装为 *ExecutionError。取消、状态查询等操作直接转发给原生 future。
package xfuture
