// Package util 提供执行器依赖的基础子包。
//
// 子包列表：
//   - xthread: worker 身份（线程名）及其在 context 中的传递
//   - xpool: core/max 语义的线程池，支持多种队列与拒绝策略
package util
