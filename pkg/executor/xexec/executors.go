package xexec

import (
	"github.com/omeyang/xexec/pkg/executor/xsched"
	"github.com/omeyang/xexec/pkg/util/xpool"
)

// NewLoggingExecutor 按配置创建线程池执行器。
func NewLoggingExecutor(cfg PoolConfig, opts ...Option) (*LoggingExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	queue, _ := cfg.queue()
	policy := o.policy
	if policy == nil {
		policy, _ = cfg.rejectionPolicy()
	}
	poolOpts := []xpool.Option{
		xpool.WithName(cfg.Name),
		xpool.WithRejectionPolicy(policy),
		xpool.WithThreadFactory(o.factory),
		xpool.WithLogger(o.poolLogger),
	}
	pool, err := xpool.New(cfg.CoreSize, cfg.maxSize(), cfg.KeepAlive, queue, poolOpts...)
	if err != nil {
		return nil, err
	}
	return newLoggingExecutor(pool, o), nil
}

// NewFailsafeScheduledExecutor 按配置创建调度执行器。
func NewFailsafeScheduledExecutor(cfg SchedulerConfig, opts ...Option) (*FailsafeScheduledExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	loc, _ := cfg.location()
	pool, err := xsched.New(cfg.Threads,
		xsched.WithName(cfg.Name),
		xsched.WithThreadFactory(o.factory),
		xsched.WithLogger(o.poolLogger),
		xsched.WithLocation(loc),
	)
	if err != nil {
		return nil, err
	}
	return newFailsafeScheduledExecutor(pool, o), nil
}

// NewFixedThreadPool 创建 n 个常驻 worker、无界队列的执行器。
func NewFixedThreadPool(n int, name string, opts ...Option) (*LoggingExecutor, error) {
	return NewLoggingExecutor(PoolConfig{
		Name:     name,
		CoreSize: n,
		MaxSize:  n,
		Queue:    QueueUnbounded,
	}, opts...)
}

// NewCachedThreadPool 创建按需增减 worker 的执行器：
// 没有空闲 worker 时新建，空闲 60 秒的 worker 退出。
func NewCachedThreadPool(name string, opts ...Option) (*LoggingExecutor, error) {
	return NewLoggingExecutor(PoolConfig{
		Name:      name,
		CoreSize:  0,
		MaxSize:   xpool.MaxPoolSize,
		KeepAlive: xpool.DefaultCachedKeepAlive,
		Queue:     QueueSynchronous,
	}, opts...)
}

// NewSingleThreadExecutor 创建单 worker、无界队列的执行器，任务按提交顺序执行。
// 返回值只暴露 [Service]。
func NewSingleThreadExecutor(name string, opts ...Option) (Service, error) {
	ex, err := NewFixedThreadPool(1, name, opts...)
	if err != nil {
		return nil, err
	}
	return delegatedService{ex}, nil
}

// NewScheduledThreadPool 创建 n 个 worker 的调度执行器。
func NewScheduledThreadPool(n int, name string, opts ...Option) (*FailsafeScheduledExecutor, error) {
	return NewFailsafeScheduledExecutor(SchedulerConfig{Name: name, Threads: n}, opts...)
}

// NewSingleThreadScheduledExecutor 创建单 worker 的调度执行器。
// 返回值只暴露 [ScheduledService]。
func NewSingleThreadScheduledExecutor(name string, opts ...Option) (ScheduledService, error) {
	ex, err := NewScheduledThreadPool(1, name, opts...)
	if err != nil {
		return nil, err
	}
	return delegatedScheduledService{ex}, nil
}

// delegatedService 只暴露 Service 的方法。
type delegatedService struct {
	Service
}

// delegatedScheduledService 只暴露 ScheduledService 的方法。
type delegatedScheduledService struct {
	ScheduledService
}
