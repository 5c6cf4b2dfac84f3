package xsched

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xexec/pkg/executor/xfuture"
	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/util/xpool"
	"github.com/omeyang/xexec/pkg/util/xthread"
)

func newPool(t *testing.T, threads int, opts ...Option) *ScheduledPool {
	t.Helper()
	p, err := New(threads, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		p.ShutdownNow()
		_ = p.AwaitTermination(context.Background())
	})
	return p
}

func noop() xtask.Runnable {
	return xtask.RunnableFunc(func(context.Context) {})
}

func counter(n *atomic.Int32) xtask.Runnable {
	return xtask.RunnableFunc(func(context.Context) { n.Add(1) })
}

func TestNew_Validation(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, ErrInvalidThreads)
	_, err = New(xpool.MaxPoolSize + 1)
	assert.ErrorIs(t, err, ErrInvalidThreads)

	p, err := New(1)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
	assert.True(t, p.IsTerminated())
}

func TestSchedule_Delay(t *testing.T) {
	p := newPool(t, 1)

	start := time.Now()
	f, err := p.Schedule(noop(), 30*time.Millisecond)
	require.NoError(t, err)
	assert.Greater(t, f.Delay(), time.Duration(0))

	_, err = f.Get(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.LessOrEqual(t, f.Delay(), time.Duration(0))
}

func TestSchedule_Order(t *testing.T) {
	p := newPool(t, 1)

	var mu sync.Mutex
	var order []int
	record := func(i int) xtask.Runnable {
		return xtask.RunnableFunc(func(context.Context) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	// 先阻塞唯一的 worker，让后续任务全部排队
	release := make(chan struct{})
	started := make(chan struct{})
	_, err := p.Schedule(xtask.RunnableFunc(func(context.Context) {
		close(started)
		<-release
	}), 0)
	require.NoError(t, err)
	<-started

	_, err = p.Schedule(record(3), 20*time.Millisecond)
	require.NoError(t, err)
	_, err = p.Schedule(record(1), 0)
	require.NoError(t, err)
	last, err := p.Schedule(record(2), 0)
	require.NoError(t, err)
	close(release)

	_, err = last.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestScheduleCallable(t *testing.T) {
	p := newPool(t, 1)
	f, err := p.ScheduleCallable(xtask.CallableFunc[any](func(context.Context) (any, error) {
		return "v", nil
	}), time.Millisecond)
	require.NoError(t, err)
	v, err := f.GetTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestScheduleAtFixedRate(t *testing.T) {
	p := newPool(t, 1)

	var n atomic.Int32
	f, err := p.ScheduleAtFixedRate(counter(&n), 0, 5*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	assert.False(t, f.IsDone())
	assert.True(t, f.Cancel(false))
	assert.True(t, f.IsCancelled())

	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	// 取消时可能恰好有一次执行在进行
	assert.LessOrEqual(t, n.Load(), stopped+1)
}

func TestScheduleWithFixedDelay(t *testing.T) {
	p := newPool(t, 1)

	var mu sync.Mutex
	var ends []time.Time
	var starts []time.Time
	f, err := p.ScheduleWithFixedDelay(xtask.RunnableFunc(func(context.Context) {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		ends = append(ends, time.Now())
		mu.Unlock()
	}), 0, 10*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(starts) >= 3
	}, 2*time.Second, time.Millisecond)
	f.Cancel(false)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(starts) && i <= len(ends); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(ends[i-1]), 10*time.Millisecond)
	}
}

func TestSchedulePeriodic_InvalidPeriod(t *testing.T) {
	p := newPool(t, 1)
	_, err := p.ScheduleAtFixedRate(noop(), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = p.ScheduleWithFixedDelay(noop(), 0, -time.Second)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestSchedulePeriodic_PanicStopsFurtherRuns(t *testing.T) {
	p := newPool(t, 1)

	var n atomic.Int32
	f, err := p.ScheduleAtFixedRate(xtask.RunnableFunc(func(context.Context) {
		if n.Add(1) == 2 {
			panic("boom")
		}
	}), 0, 5*time.Millisecond)
	require.NoError(t, err)

	_, err = f.GetTimeout(time.Second)
	var pe *xtask.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(2), n.Load())
	assert.Equal(t, 0, p.Stats().QueueSize)
}

func TestScheduleCron(t *testing.T) {
	p := newPool(t, 1)

	var n atomic.Int32
	f, err := p.ScheduleCron(counter(&n), "* * * * * *")
	require.NoError(t, err)
	assert.LessOrEqual(t, f.Delay(), time.Second)

	assert.Eventually(t, func() bool { return n.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	assert.True(t, f.Cancel(false))

	_, err = p.ScheduleCron(noop(), "not a cron")
	assert.ErrorIs(t, err, ErrInvalidCronSpec)

	f, err = p.ScheduleCron(noop(), "@hourly")
	require.NoError(t, err)
	assert.Greater(t, f.Delay(), time.Duration(0))
	assert.LessOrEqual(t, f.Delay(), time.Hour)
	f.Cancel(false)
}

func TestScheduleCron_CustomParserAndLocation(t *testing.T) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	p := newPool(t, 1, WithParser(parser), WithLocation(time.UTC))

	_, err := p.ScheduleCron(noop(), "* * * * * *")
	assert.ErrorIs(t, err, ErrInvalidCronSpec, "seconds field rejected")

	f, err := p.ScheduleCron(noop(), "0 0 * * *")
	require.NoError(t, err)
	assert.LessOrEqual(t, f.Delay(), 24*time.Hour)
	f.Cancel(false)
}

func TestScheduleCron_NeverMatching(t *testing.T) {
	p := newPool(t, 1)

	var n atomic.Int32
	_, err := p.ScheduleCron(counter(&n), "0 0 30 2 *")
	assert.ErrorIs(t, err, ErrInvalidCronSpec)
	assert.Equal(t, 0, p.Stats().QueueSize)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), n.Load())
}

// scheduleFunc 把函数适配为 cron.Schedule。
type scheduleFunc func(time.Time) time.Time

func (f scheduleFunc) Next(t time.Time) time.Time { return f(t) }

func TestScheduleCron_ExhaustedScheduleCancels(t *testing.T) {
	p := newPool(t, 1)

	var n atomic.Int32
	task := p.newTask(xfuture.NewRunnableTask[any](counter(&n), nil), 0)
	task.schedule = scheduleFunc(func(time.Time) time.Time { return time.Time{} })
	f, err := p.delayedExecute(task)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = f.Get(ctx)
	assert.ErrorIs(t, err, xfuture.ErrCancelled)
	assert.True(t, f.IsCancelled())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
	assert.Equal(t, 0, p.Stats().QueueSize)
}

func TestSchedule_MaxDelaySaturates(t *testing.T) {
	p := newPool(t, 2)
	forever := time.Duration(math.MaxInt64)

	var once, rate, delay atomic.Int32
	f, err := p.Schedule(counter(&once), forever)
	require.NoError(t, err)
	assert.Greater(t, f.Delay(), 100*365*24*time.Hour)

	fr, err := p.ScheduleAtFixedRate(counter(&rate), 0, forever)
	require.NoError(t, err)
	fd, err := p.ScheduleWithFixedDelay(counter(&delay), 0, forever)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return rate.Load() == 1 && delay.Load() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(0), once.Load())
	assert.Equal(t, int32(1), rate.Load())
	assert.Equal(t, int32(1), delay.Load())
	assert.Greater(t, fr.Delay(), 100*365*24*time.Hour)
	assert.Greater(t, fd.Delay(), 100*365*24*time.Hour)
	assert.Equal(t, 3, p.Stats().QueueSize)
}

func TestTriggerTime(t *testing.T) {
	assert.Equal(t, int64(10), triggerTime(10, -time.Second))
	assert.Equal(t, int64(10)+int64(time.Second), triggerTime(10, time.Second))
	assert.Equal(t, int64(math.MaxInt64), triggerTime(time.Now().UnixNano(), time.Duration(math.MaxInt64)))
	assert.Equal(t, int64(math.MaxInt64), triggerTime(math.MaxInt64-1, 2))
}

func TestCancel_RemovesFromQueue(t *testing.T) {
	p := newPool(t, 1)

	f, err := p.Schedule(noop(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats().QueueSize)

	assert.True(t, f.Cancel(false))
	assert.Equal(t, 0, p.Stats().QueueSize)
	_, err = f.Get(context.Background())
	assert.Error(t, err)
	assert.False(t, f.Cancel(false))
}

func TestShutdown_CancelsPeriodicKeepsDelayed(t *testing.T) {
	p := newPool(t, 2)

	periodic, err := p.ScheduleAtFixedRate(noop(), time.Hour, time.Hour)
	require.NoError(t, err)
	var ran atomic.Bool
	delayed, err := p.Schedule(xtask.RunnableFunc(func(context.Context) { ran.Store(true) }), 20*time.Millisecond)
	require.NoError(t, err)

	p.Shutdown()
	assert.True(t, periodic.IsCancelled())
	assert.True(t, p.IsShutdown())

	_, err = p.Schedule(noop(), 0)
	assert.ErrorIs(t, err, xpool.ErrPoolStopped)

	_, err = delayed.GetTimeout(time.Second)
	require.NoError(t, err)
	assert.True(t, ran.Load())
	require.NoError(t, p.AwaitTermination(context.Background()))
	assert.True(t, p.IsTerminated())
}

func TestShutdownNow_ReturnsPending(t *testing.T) {
	p := newPool(t, 1)

	_, err := p.Schedule(noop(), time.Hour)
	require.NoError(t, err)
	_, err = p.ScheduleAtFixedRate(noop(), time.Hour, time.Minute)
	require.NoError(t, err)

	pending := p.ShutdownNow()
	assert.Len(t, pending, 2)
	require.NoError(t, p.AwaitTermination(context.Background()))
}

func TestShutdownNow_InterruptsRunning(t *testing.T) {
	p := newPool(t, 1)

	started := make(chan struct{})
	interrupted := make(chan error, 1)
	_, err := p.Schedule(xtask.RunnableFunc(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		interrupted <- ctx.Err()
	}), 0)
	require.NoError(t, err)
	<-started

	p.ShutdownNow()
	assert.ErrorIs(t, <-interrupted, context.Canceled)
}

func TestSubmitForms(t *testing.T) {
	p := newPool(t, 2, WithName("sched"))
	ctx := context.Background()

	require.NoError(t, p.Execute(noop()))

	names := make(chan string, 1)
	f, err := p.Submit(xtask.RunnableFunc(func(ctx context.Context) {
		names <- xthread.Current(ctx).Name
	}))
	require.NoError(t, err)
	_, err = f.Get(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^sched-\d+$`, <-names)

	f, err = p.SubmitWithResult(noop(), 7)
	require.NoError(t, err)
	v, err := f.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	f, err = p.SubmitCallable(xtask.CallableFunc[any](func(context.Context) (any, error) { return "c", nil }))
	require.NoError(t, err)
	v, err = f.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", v)

	futures, err := p.InvokeAll(ctx, []xtask.Callable[any]{
		xtask.CallableFunc[any](func(context.Context) (any, error) { return 1, nil }),
	})
	require.NoError(t, err)
	require.Len(t, futures, 1)

	v, err = p.InvokeAny(ctx, []xtask.Callable[any]{
		xtask.CallableFunc[any](func(context.Context) (any, error) { return 2, nil }),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	assert.Equal(t, "sched", p.Name())
	assert.LessOrEqual(t, p.Stats().LargestPoolSize, 2)
}

func TestNilTasks(t *testing.T) {
	p := newPool(t, 1)
	_, err := p.Schedule(nil, 0)
	assert.ErrorIs(t, err, xtask.ErrNilTask)
	_, err = p.ScheduleCallable(nil, 0)
	assert.ErrorIs(t, err, xtask.ErrNilTask)
	_, err = p.ScheduleAtFixedRate(nil, 0, time.Second)
	assert.ErrorIs(t, err, xtask.ErrNilTask)
	_, err = p.ScheduleWithFixedDelay(nil, 0, time.Second)
	assert.ErrorIs(t, err, xtask.ErrNilTask)
	_, err = p.ScheduleCron(nil, "@hourly")
	assert.ErrorIs(t, err, xtask.ErrNilTask)
	_, err = p.SubmitWithResult(nil, 1)
	assert.ErrorIs(t, err, xtask.ErrNilTask)
	assert.ErrorIs(t, p.Execute(nil), xtask.ErrNilTask)
}
