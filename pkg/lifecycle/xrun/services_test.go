package xrun

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/util/xpool"
)

func TestExecutor_GracefulShutdown(t *testing.T) {
	pool, err := xpool.New(1, 1, 0, xpool.Unbounded())
	require.NoError(t, err)

	var ran atomic.Int32
	for range 3 {
		require.NoError(t, pool.Execute(xtask.RunnableFunc(func(context.Context) {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		})))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Executor("pool", pool, time.Second)(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, pool.IsTerminated())
	assert.Equal(t, int32(3), ran.Load())
}

func TestExecutor_ForcesAfterGrace(t *testing.T) {
	pool, err := xpool.New(1, 1, 0, xpool.Unbounded())
	require.NoError(t, err)

	started := make(chan struct{})
	require.NoError(t, pool.Execute(xtask.RunnableFunc(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	})))
	require.NoError(t, pool.Execute(xtask.RunnableFunc(func(context.Context) {})))
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Executor("pool", pool, 10*time.Millisecond)(ctx)

	var se *ShutdownError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "pool", se.Name)
	assert.Equal(t, 1, se.Dropped)
	assert.ErrorIs(t, err, ErrShutdownTimeout)
	assert.True(t, pool.IsTerminated())
}

func TestExecutor_Nil(t *testing.T) {
	assert.ErrorIs(t, Executor("none", nil, 0)(context.Background()), ErrNilExecutor)
}

func TestRun_WithExecutors(t *testing.T) {
	pool, err := xpool.New(2, 2, 0, xpool.Unbounded())
	require.NoError(t, err)

	boom := errors.New("stop")
	err = RunWithOptions(context.Background(), []Option{WithoutSignalHandler()},
		Executor("pool", pool, time.Second),
		func(context.Context) error { return boom },
	)
	assert.Same(t, boom, err)
	assert.True(t, pool.IsTerminated())
}
