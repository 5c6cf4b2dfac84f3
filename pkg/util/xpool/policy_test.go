package xpool

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/util/xthread"
)

// saturate 让 1/1/Bounded(1) 的池处于满载状态，返回释放函数。
func saturate(t *testing.T, p *ThreadPool, queued xtask.Runnable) func() {
	t.Helper()
	release := make(chan struct{})
	block, started := blocker(release)
	require.NoError(t, p.Execute(block))
	<-started
	require.NoError(t, p.Execute(queued))
	return func() { close(release) }
}

func TestCallerRunsPolicy(t *testing.T) {
	p := newPool(t, 1, 1, 0, Bounded(1), WithRejectionPolicy(CallerRunsPolicy{}))
	release := saturate(t, p, noop())
	defer release()

	var name string
	err := p.Execute(xtask.RunnableFunc(func(ctx context.Context) {
		name = xthread.Current(ctx).Name
	}))
	require.NoError(t, err)
	assert.Equal(t, xthread.CallerName, name)

	p.Shutdown()
	assert.ErrorIs(t, p.Execute(noop()), ErrPoolStopped)
}

func TestDiscardPolicy(t *testing.T) {
	p := newPool(t, 1, 1, 0, Bounded(1), WithRejectionPolicy(DiscardPolicy{}))
	release := saturate(t, p, noop())

	var ran atomic.Bool
	require.NoError(t, p.Execute(xtask.RunnableFunc(func(context.Context) { ran.Store(true) })))
	release()
	require.NoError(t, p.Close())
	assert.False(t, ran.Load())
}

func TestDiscardOldestPolicy(t *testing.T) {
	p := newPool(t, 1, 1, 0, Bounded(1), WithRejectionPolicy(DiscardOldestPolicy{}))

	var oldest, newest atomic.Bool
	release := saturate(t, p, xtask.RunnableFunc(func(context.Context) { oldest.Store(true) }))

	require.NoError(t, p.Execute(xtask.RunnableFunc(func(context.Context) { newest.Store(true) })))
	release()
	require.NoError(t, p.Close())

	assert.False(t, oldest.Load())
	assert.True(t, newest.Load())
}

func TestDiscardOldestPolicy_NothingQueued(t *testing.T) {
	p := newPool(t, 0, 1, 0, Synchronous(), WithRejectionPolicy(DiscardOldestPolicy{}))
	release := make(chan struct{})
	defer close(release)
	block, started := blocker(release)
	require.NoError(t, p.Execute(block))
	<-started

	assert.ErrorIs(t, p.Execute(noop()), ErrRejected)
}

func TestAbortPolicy_Stopped(t *testing.T) {
	p := newPool(t, 1, 1, 0, Unbounded())
	p.Shutdown()
	assert.ErrorIs(t, AbortPolicy{}.Rejected(noop(), p), ErrPoolStopped)
}
