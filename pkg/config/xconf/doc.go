// Package xconf 加载执行器与命令行工具的配置，基于 koanf 实现。
//
// # 格式
//
//   - YAML：.yaml, .yml
//   - JSON：.json
//
// 文件格式由扩展名决定；[NewFromBytes] 需要显式指定格式。
//
// # 反序列化
//
// [Config.Unmarshal] 使用 koanf 的 mapstructure 解码，"30s" 这样的字符串
// 会解码为 time.Duration。[Load] 在解码后调用目标的 Validate 方法：
//
//	pool, err := xconf.Load[xexec.PoolConfig](cfg, "pool")
//
// # 快照
//
// Reload 成功后原子替换内部 koanf 实例；解析失败时保留旧配置。
// 并发的 Unmarshal 读到的是某一次完整加载的结果。
//
// # 监视
//
// [Watch] 基于 fsnotify 监视配置文件所在目录（兼容编辑器的原子写入），
// 防抖后重载并回调。Stop 返回后不会再有回调。
package xconf
