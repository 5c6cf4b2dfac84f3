// Package xmetrics 提供统一的观测抽象（trace + metrics），默认实现基于 OpenTelemetry。
//
// 执行器用它观测每一次任务执行：
//
//	ctx, span := xmetrics.Start(ctx, observer, xmetrics.SpanOptions{
//		Component: "xexec",
//		Operation: "task",
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// observer 为 nil 时 [Start] 返回空跨度，调用方无需判空。
//
// OTel 实现记录两个指标：
//   - xexec.operation.total（counter，按 component/operation/status 分组）
//   - xexec.operation.duration（histogram，单位秒）
package xmetrics
