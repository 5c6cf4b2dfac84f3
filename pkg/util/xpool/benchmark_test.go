package xpool

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/omeyang/xexec/pkg/executor/xtask"
)

var benchTask = xtask.RunnableFunc(func(context.Context) {})

func BenchmarkExecute(b *testing.B) {
	pool, err := New(4, 4, 0, Bounded(10000))
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Close()

	b.ReportAllocs()
	b.ResetTimer()
	var rejected int64
	for b.Loop() {
		if err := pool.Execute(benchTask); err != nil {
			rejected++
		}
	}
	if rejected > 0 {
		b.ReportMetric(float64(rejected)/float64(b.N)*100, "reject-%")
	}
}

func BenchmarkExecute_Parallel(b *testing.B) {
	pool, err := New(4, 4, 0, Bounded(10000))
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Close()

	var rejected atomic.Int64
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := pool.Execute(benchTask); err != nil {
				rejected.Add(1)
			}
		}
	})
	if r := rejected.Load(); r > 0 {
		b.ReportMetric(float64(r)/float64(b.N)*100, "reject-%")
	}
}

func BenchmarkExecute_Cached(b *testing.B) {
	pool, err := New(0, MaxPoolSize, DefaultCachedKeepAlive, Synchronous())
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Close()

	b.ReportAllocs()
	for b.Loop() {
		_ = pool.Execute(benchTask)
	}
}
