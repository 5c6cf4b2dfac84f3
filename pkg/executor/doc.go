// Package executor 提供任务执行相关的子包。
//
// 子包列表：
//   - xtask: 任务模型与失效安全包装器
//   - xfuture: 结果句柄、失败适配与批量调用
//   - xsched: 延迟与周期调度池，支持 cron 表达式
//   - xexec: 记录并保留任务失败的执行器及其工厂函数
package executor
