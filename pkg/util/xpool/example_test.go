package xpool_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/util/xpool"
)

func Example() {
	var count atomic.Int32

	pool, err := xpool.New(2, 2, 0, xpool.Unbounded(), xpool.WithName("demo"))
	if err != nil {
		panic(err)
	}

	for range 5 {
		if err := pool.Execute(xtask.RunnableFunc(func(context.Context) {
			count.Add(1)
		})); err != nil {
			fmt.Println("Execute error:", err)
		}
	}

	// Close 等待所有任务处理完成
	if err := pool.Close(); err != nil {
		panic(err)
	}

	fmt.Println("Processed:", count.Load())
	// Output:
	// Processed: 5
}

func ExampleThreadPool_SubmitWithResult() {
	pool, err := xpool.New(1, 1, 0, xpool.Unbounded())
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	future, err := pool.SubmitWithResult(xtask.RunnableFunc(func(context.Context) {}), "done")
	if err != nil {
		panic(err)
	}
	v, err := future.GetTimeout(time.Second)
	fmt.Println(v, err)
	// Output:
	// done <nil>
}

func ExampleThreadPool_ShutdownNow() {
	pool, err := xpool.New(1, 1, 0, xpool.Bounded(10))
	if err != nil {
		panic(err)
	}

	started := make(chan struct{})
	_ = pool.Execute(xtask.RunnableFunc(func(ctx context.Context) {
		close(started)
		<-ctx.Done() // ShutdownNow 取消 ctx
	}))
	<-started
	_ = pool.Execute(xtask.RunnableFunc(func(context.Context) {}))

	pending := pool.ShutdownNow()
	_ = pool.AwaitTermination(context.Background())
	fmt.Println("pending:", len(pending))
	// Output:
	// pending: 1
}
