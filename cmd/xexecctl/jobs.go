package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/omeyang/xexec/pkg/executor/xexec"
	"github.com/omeyang/xexec/pkg/executor/xfuture"
	"github.com/omeyang/xexec/pkg/executor/xtask"
	"github.com/omeyang/xexec/pkg/observability/xlog"
)

const (
	// maxOutputTail 失败时附带的输出尾部长度
	maxOutputTail = 512
	waitDelay     = time.Second
)

// JobError 表示一次任务命令执行失败。
type JobError struct {
	Job    string
	Output string
	Err    error
}

func (e *JobError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("job %s: %v", e.Job, e.Err)
	}
	return fmt.Sprintf("job %s: %v: %s", e.Job, e.Err, e.Output)
}

func (e *JobError) Unwrap() error { return e.Err }

// commandJob 在 shell 中执行一条命令。命令失败时 panic，由执行器记录。
type commandJob struct {
	cfg   jobConfig
	shell string
}

func (j commandJob) Run(ctx context.Context) {
	if j.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.cfg.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, j.shell, "-c", j.cfg.Command)
	// shell 被杀死后，仍持有输出管道的子进程不应让 Run 一直阻塞
	cmd.WaitDelay = waitDelay
	out, err := cmd.CombinedOutput()
	if err != nil {
		panic(&JobError{Job: j.cfg.Name, Output: tail(out), Err: err})
	}
}

func tail(out []byte) string {
	out = bytes.TrimSpace(out)
	if len(out) > maxOutputTail {
		out = out[len(out)-maxOutputTail:]
	}
	return string(out)
}

// runner 把每个任务的触发放在调度器上，命令本身交给线程池执行，
// 长命令不会占住调度线程。
type runner struct {
	pool    *xexec.LoggingExecutor
	sched   *xexec.FailsafeScheduledExecutor
	logger  xlog.Logger
	shell   string
	futures map[string]xfuture.ScheduledFuture[any]
}

func newRunner(pool *xexec.LoggingExecutor, sched *xexec.FailsafeScheduledExecutor, logger xlog.Logger) *runner {
	return &runner{
		pool:    pool,
		sched:   sched,
		logger:  logger,
		shell:   "/bin/sh",
		futures: make(map[string]xfuture.ScheduledFuture[any]),
	}
}

// schedule 按任务配置注册触发器。
func (r *runner) schedule(j jobConfig) error {
	var (
		f   xfuture.ScheduledFuture[any]
		err error
	)
	trigger := r.trigger(j)
	switch j.Mode {
	case modeFixedRate:
		f, err = r.sched.ScheduleAtFixedRate(trigger, j.InitialDelay, j.Interval)
	case modeFixedDelay:
		f, err = r.sched.ScheduleWithFixedDelay(trigger, j.InitialDelay, j.Interval)
	case modeCron:
		f, err = r.sched.ScheduleCron(trigger, j.Cron)
	default:
		err = fmt.Errorf("unknown mode %q", j.Mode)
	}
	if err != nil {
		return fmt.Errorf("xexecctl: schedule job %s: %w", j.Name, err)
	}
	r.futures[j.Name] = f
	r.logger.Info(context.Background(), "job scheduled",
		slog.String("job", j.Name), slog.String("mode", j.Mode), slog.String("schedule", j.schedule()))
	return nil
}

// trigger 返回调度器每次触发时执行的动作。
//
// fixed_delay 等待命令结束，使间隔从上一次结束开始计算；
// 其余模式只投递命令。
func (r *runner) trigger(j jobConfig) xtask.Runnable {
	job := commandJob{cfg: j, shell: r.shell}
	attr := slog.String("job", j.Name)

	return xtask.RunnableFunc(func(ctx context.Context) {
		if j.Mode != modeFixedDelay {
			if err := r.pool.Execute(job); err != nil {
				r.logger.Warn(ctx, "job skipped", attr, xlog.Err(err))
			}
			return
		}
		f, err := r.pool.Submit(job)
		if err != nil {
			r.logger.Warn(ctx, "job skipped", attr, xlog.Err(err))
			return
		}
		// 失败已由线程池记录
		_, _ = f.Get(ctx)
	})
}
