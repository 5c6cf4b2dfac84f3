package xexec

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 池指标名
const (
	MetricPoolSize      = "xexec.pool.size"
	MetricPoolActive    = "xexec.pool.active"
	MetricPoolQueued    = "xexec.pool.queued"
	MetricPoolCompleted = "xexec.pool.completed"

	metricAttrPoolName = "pool"
	metricUnitTask     = "{task}"
)

// RegisterMetrics 以 OTel 异步仪表导出 src 的运行快照。
//
// 返回的 Registration 调用 Unregister 后停止导出。
func RegisterMetrics(meter metric.Meter, name string, src StatsSource) (metric.Registration, error) {
	size, err := meter.Int64ObservableGauge(MetricPoolSize,
		metric.WithDescription("Current number of workers"),
		metric.WithUnit("{worker}"))
	if err != nil {
		return nil, fmt.Errorf("xexec: create %s gauge: %w", MetricPoolSize, err)
	}
	active, err := meter.Int64ObservableGauge(MetricPoolActive,
		metric.WithDescription("Workers currently running a task"),
		metric.WithUnit("{worker}"))
	if err != nil {
		return nil, fmt.Errorf("xexec: create %s gauge: %w", MetricPoolActive, err)
	}
	queued, err := meter.Int64ObservableGauge(MetricPoolQueued,
		metric.WithDescription("Tasks waiting in the queue"),
		metric.WithUnit(metricUnitTask))
	if err != nil {
		return nil, fmt.Errorf("xexec: create %s gauge: %w", MetricPoolQueued, err)
	}
	completed, err := meter.Int64ObservableCounter(MetricPoolCompleted,
		metric.WithDescription("Tasks completed since the pool started"),
		metric.WithUnit(metricUnitTask))
	if err != nil {
		return nil, fmt.Errorf("xexec: create %s counter: %w", MetricPoolCompleted, err)
	}

	attrs := metric.WithAttributes(attribute.String(metricAttrPoolName, name))
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := src.Stats()
		o.ObserveInt64(size, int64(s.PoolSize), attrs)
		o.ObserveInt64(active, int64(s.ActiveCount), attrs)
		o.ObserveInt64(queued, int64(s.QueueSize), attrs)
		o.ObserveInt64(completed, s.CompletedTaskCount, attrs)
		return nil
	}, size, active, queued, completed)
}
