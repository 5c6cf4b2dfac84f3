// Package xtask 定义执行器的工作单元，以及拦截其失败的包装器。
//
// # 工作单元
//
//   - [Runnable]：无返回值的动作，失败只能以 panic 的形式出现
//   - [Callable]：产生值的计算，返回的 error 是预期内的失败，panic 是预期外的失败
//
// # 包装器
//
// [WrapRunnable] 捕获动作的 panic：以 ERROR 级别记录
// "<thread> ended abnormally with an exception"，并写入该包装器独有的
// [FailureCell]，不再向上 panic。worker 因此不会看到这次失败，
// 周期任务也不会因此被调度器取消；调用方通过结果句柄适配器读取该失败。
//
// [WrapCallable] 对返回的 error 记录 DEBUG 后原样返回；
// 对 panic 记录 ERROR 后以同一个值重新 panic，由原生 future 负责承载。
//
// 两种包装器都会在结束时记录一条 DEBUG 完成日志。
//
// # 幂等包装
//
// 每个包装器携带显式的已包装标记（见 [IsWrapped]），
// 对已包装的工作单元再次包装会原样返回，不会产生嵌套日志。
package xtask
