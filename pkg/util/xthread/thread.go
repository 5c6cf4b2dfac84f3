package xthread

import (
	"context"
	"strconv"
	"sync/atomic"
)

// DefaultName 是未指定名称时使用的线程名前缀。
const DefaultName = "pool"

// CallerName 是不在任何 worker 上执行时（如 CallerRuns 拒绝策略）的线程名。
const CallerName = "caller"

// Thread 表示一个 worker 的身份。
type Thread struct {
	// ID 在同一个 Factory 内单调递增，从 1 开始。
	ID uint64
	// Name 形如 "<prefix>-<ID>"。
	Name string
}

// String 返回线程名。
func (t *Thread) String() string {
	if t == nil {
		return CallerName
	}
	return t.Name
}

// Factory 创建线程身份。
type Factory interface {
	NewThread() *Thread
}

// FactoryFunc 函数适配器，将普通函数转换为 [Factory]。
type FactoryFunc func() *Thread

// NewThread 实现 [Factory] 接口。
func (f FactoryFunc) NewThread() *Thread {
	return f()
}

// namedFactory 按 "<name>-<n>" 命名线程。
type namedFactory struct {
	prefix string
	seq    atomic.Uint64
}

// NewNamedFactory 创建按序号命名的 Factory。
// name 为空时使用 [DefaultName]。
func NewNamedFactory(name string) Factory {
	if name == "" {
		name = DefaultName
	}
	return &namedFactory{prefix: name}
}

func (f *namedFactory) NewThread() *Thread {
	id := f.seq.Add(1)
	return &Thread{
		ID:   id,
		Name: f.prefix + "-" + strconv.FormatUint(id, 10),
	}
}

type threadKey struct{}

// caller 是 ctx 中没有线程时返回的占位身份。
var caller = &Thread{Name: CallerName}

// NewContext 返回携带 t 的 context。
func NewContext(ctx context.Context, t *Thread) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, threadKey{}, t)
}

// FromContext 取出 ctx 中的线程身份。
func FromContext(ctx context.Context) (*Thread, bool) {
	if ctx == nil {
		return nil, false
	}
	t, ok := ctx.Value(threadKey{}).(*Thread)
	return t, ok && t != nil
}

// Current 返回执行当前任务的线程；ctx 中没有线程时返回名为 [CallerName] 的占位身份。
func Current(ctx context.Context) *Thread {
	if t, ok := FromContext(ctx); ok {
		return t
	}
	return caller
}
