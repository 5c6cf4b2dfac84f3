// Package xlog 基于 log/slog 的结构化日志库，是执行器的日志协作方。
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后 Build 返回该错误）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelDebug).
//		SetFormat("json").
//		SetRotation("/var/log/app.log", xlog.WithMaxSize(100)).
//		Build()
//	if err != nil { ... }
//	defer cleanup()
//
// # 全局 Logger
//
//   - [Default]: 惰性初始化的全局 Logger（stderr、Info、text）
//   - [SetDefault]: 替换全局 Logger（nil 被忽略）
//   - [ResetDefault]: 重置为未初始化状态（仅用于测试）
//
// # 便捷属性
//
// [Err] 保留原始 error 对象（handler 输出 err.Error()），
// [Thread] 标识执行任务的 worker，[Component]、[Duration]。
//
// # 动态级别
//
// Build 返回 [LoggerWithLevel]，派生 logger 共享同一个 LevelVar，
// 运行时 SetLevel 对所有派生 logger 生效。
package xlog
