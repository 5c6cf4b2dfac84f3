package xexec

import (
	"fmt"
	"strings"
	"time"

	"github.com/omeyang/xexec/pkg/util/xpool"
)

// 队列类型
const (
	QueueUnbounded   = "unbounded"
	QueueBounded     = "bounded"
	QueueSynchronous = "synchronous"
)

// 拒绝策略
const (
	RejectAbort         = "abort"
	RejectCallerRuns    = "caller_runs"
	RejectDiscard       = "discard"
	RejectDiscardOldest = "discard_oldest"
)

// PoolConfig 线程池执行器配置，可由 xconf 反序列化。
//
// YAML 示例：
//
//	pool:
//	  name: worker
//	  core_size: 4
//	  max_size: 8
//	  keep_alive: 30s
//	  queue: bounded
//	  queue_capacity: 1000
//	  rejection: caller_runs
type PoolConfig struct {
	// Name 线程名前缀，默认 "pool"。
	Name string `koanf:"name" json:"name"`
	// CoreSize 常驻 worker 数。
	CoreSize int `koanf:"core_size" json:"core_size"`
	// MaxSize worker 数上限，0 表示等于 CoreSize。
	MaxSize int `koanf:"max_size" json:"max_size"`
	// KeepAlive 超过 CoreSize 的 worker 的空闲存活时间。
	KeepAlive time.Duration `koanf:"keep_alive" json:"keep_alive"`
	// Queue 队列类型：unbounded（默认）、bounded、synchronous。
	Queue string `koanf:"queue" json:"queue"`
	// QueueCapacity bounded 队列的容量。
	QueueCapacity int `koanf:"queue_capacity" json:"queue_capacity"`
	// Rejection 拒绝策略：abort（默认）、caller_runs、discard、discard_oldest。
	Rejection string `koanf:"rejection" json:"rejection"`
}

func (c PoolConfig) maxSize() int {
	if c.MaxSize == 0 {
		return c.CoreSize
	}
	return c.MaxSize
}

// Validate 检查配置。
func (c PoolConfig) Validate() error {
	if c.CoreSize < 0 {
		return fmt.Errorf("%w: core_size %d is negative", ErrInvalidConfig, c.CoreSize)
	}
	if m := c.maxSize(); m < 1 || m < c.CoreSize {
		return fmt.Errorf("%w: max_size %d (core_size %d)", ErrInvalidConfig, m, c.CoreSize)
	}
	if c.KeepAlive < 0 {
		return fmt.Errorf("%w: keep_alive %v is negative", ErrInvalidConfig, c.KeepAlive)
	}
	if _, err := c.queue(); err != nil {
		return err
	}
	if _, err := c.rejectionPolicy(); err != nil {
		return err
	}
	return nil
}

func (c PoolConfig) queue() (xpool.Queue, error) {
	switch strings.ToLower(strings.TrimSpace(c.Queue)) {
	case "", QueueUnbounded:
		return xpool.Unbounded(), nil
	case QueueBounded:
		if c.QueueCapacity < 1 {
			return xpool.Queue{}, fmt.Errorf("%w: bounded queue needs queue_capacity >= 1, got %d",
				ErrInvalidConfig, c.QueueCapacity)
		}
		return xpool.Bounded(c.QueueCapacity), nil
	case QueueSynchronous:
		return xpool.Synchronous(), nil
	default:
		return xpool.Queue{}, fmt.Errorf("%w: %q", ErrUnknownQueue, c.Queue)
	}
}

func (c PoolConfig) rejectionPolicy() (xpool.RejectionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(c.Rejection)) {
	case "", RejectAbort:
		return xpool.AbortPolicy{}, nil
	case RejectCallerRuns:
		return xpool.CallerRunsPolicy{}, nil
	case RejectDiscard:
		return xpool.DiscardPolicy{}, nil
	case RejectDiscardOldest:
		return xpool.DiscardOldestPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRejection, c.Rejection)
	}
}

// SchedulerConfig 调度执行器配置。
//
// YAML 示例：
//
//	scheduler:
//	  name: sched
//	  threads: 2
//	  location: Asia/Shanghai
type SchedulerConfig struct {
	// Name 线程名前缀，默认 "pool"。
	Name string `koanf:"name" json:"name"`
	// Threads worker 数，至少为 1。
	Threads int `koanf:"threads" json:"threads"`
	// Location cron 表达式使用的 IANA 时区名，空值为本地时区。
	Location string `koanf:"location" json:"location"`
}

// Validate 检查配置。
func (c SchedulerConfig) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("%w: threads %d must be at least 1", ErrInvalidConfig, c.Threads)
	}
	if _, err := c.location(); err != nil {
		return err
	}
	return nil
}

func (c SchedulerConfig) location() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: location %q: %w", ErrInvalidConfig, c.Location, err)
	}
	return loc, nil
}

// Config 组合线程池与调度器配置，对应配置文件中的 pool 与 scheduler 两节。
type Config struct {
	Pool      PoolConfig      `koanf:"pool" json:"pool"`
	Scheduler SchedulerConfig `koanf:"scheduler" json:"scheduler"`
}

// Validate 检查两节配置。
func (c Config) Validate() error {
	if err := c.Pool.Validate(); err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}
