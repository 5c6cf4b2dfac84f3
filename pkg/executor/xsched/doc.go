// Package xsched 提供执行器底层的调度池 [ScheduledPool]。
//
// ScheduledPool 由固定数量的 worker 从按触发时间排序的延迟队列中取任务执行，
// 触发时间相同的任务按提交顺序执行。支持：
//   - 一次性延迟任务：[ScheduledPool.Schedule]、[ScheduledPool.ScheduleCallable]
//   - 固定频率：下一次触发时间 = 上一次计划触发时间 + period
//   - 固定延迟：下一次触发时间 = 上一次完成时间 + delay
//   - cron 表达式：由 robfig/cron 解析，支持可选的秒字段和 @every、@daily 等描述符
//
// 同一个周期任务的各次执行不会重叠。
//
// # 周期任务的失败
//
// 某次执行 panic 时，该周期任务的结果句柄以 *xtask.PanicError 完成，
// 之后不再调度。需要在失败后继续调度的周期任务，应先经过 xtask.WrapRunnable 包装。
//
// # 关闭
//
// Shutdown 取消所有周期任务，已提交的一次性延迟任务仍会按时执行；
// ShutdownNow 取出所有排队任务并取消正在运行任务的 ctx。
package xsched
