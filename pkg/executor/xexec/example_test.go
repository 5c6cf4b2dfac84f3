package xexec_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xexec"
	"github.com/omeyang/xexec/pkg/executor/xfuture"
	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/observability/xlog"
)

func quietLogger() xlog.Logger {
	logger, _, err := xlog.New().SetOutput(io.Discard).Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func Example() {
	ex, err := xexec.NewFixedThreadPool(2, "worker", xexec.WithLogger(quietLogger()))
	if err != nil {
		panic(err)
	}
	defer ex.Close()

	// panic 只会被记录，不会终止 worker
	f, err := ex.Submit(xtask.RunnableFunc(func(context.Context) {
		panic("boom")
	}))
	if err != nil {
		panic(err)
	}
	_, err = f.Get(context.Background())

	var ee *xfuture.ExecutionError
	fmt.Println(errors.As(err, &ee))

	sum, err := xexec.Submit(ex, xtask.CallableFunc[int](func(context.Context) (int, error) {
		return 40 + 2, nil
	}))
	if err != nil {
		panic(err)
	}
	v, err := sum.GetTimeout(time.Second)
	fmt.Println(v, err)
	// Output:
	// true
	// 42 <nil>
}

func ExampleFailsafeScheduledExecutor_ScheduleAtFixedRate() {
	ex, err := xexec.NewScheduledThreadPool(1, "ticker", xexec.WithLogger(quietLogger()))
	if err != nil {
		panic(err)
	}
	defer ex.Close()

	ticks := make(chan int, 3)
	n := 0
	f, err := ex.ScheduleAtFixedRate(xtask.RunnableFunc(func(context.Context) {
		n++
		ticks <- n
		if n%2 == 1 {
			panic("odd tick")
		}
	}), 0, 5*time.Millisecond)
	if err != nil {
		panic(err)
	}

	for range 3 {
		fmt.Println("tick", <-ticks)
	}
	f.Cancel(false)
	// Output:
	// tick 1
	// tick 2
	// tick 3
}
