package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xexec/pkg/config/xconf"
	"github.com/omeyang/xexec/pkg/executor/xexec"
	"github.com/omeyang/xexec/pkg/lifecycle/xrun"
	"github.com/omeyang/xexec/pkg/observability/xlog"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "配置文件路径（.yaml/.yml/.json）",
}

func configPath(cmd *cli.Command) (string, error) {
	path := cmd.String("config")
	if path == "" {
		return "", &usageError{err: errors.New("--config is required")}
	}
	return path, nil
}

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:         "check",
		Usage:        "校验配置文件并列出任务",
		Flags:        []cli.Flag{configFlag},
		OnUsageError: onUsageError,
		Action: func(_ context.Context, cmd *cli.Command) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			_, cfg, err := loadConfig(path)
			if err != nil {
				return &usageError{err: err}
			}
			return printJobs(cmd.Root().Writer, cfg)
		},
	}
}

func printJobs(w io.Writer, cfg fileConfig) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODE\tSCHEDULE\tTIMEOUT\tCOMMAND")
	for _, j := range cfg.Jobs {
		timeout := "-"
		if j.Timeout > 0 {
			timeout = j.Timeout.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.Name, j.Mode, j.schedule(), timeout, j.Command)
	}
	return tw.Flush()
}

func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:         "run",
		Usage:        "按配置文件调度任务",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			configFlag,
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "运行时长，0 表示直到收到信号",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			if cmd.Duration("duration") < 0 {
				return &usageError{err: errors.New("--duration must not be negative")}
			}
			src, cfg, err := loadConfig(path)
			if err != nil {
				return &usageError{err: err}
			}
			return runJobs(ctx, src, cfg, cmd.Duration("duration"), cmd.Root().ErrWriter)
		},
	}
}

func newLogger(cfg logConfig, stderr io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().SetLevelString(cfg.Level)
	if cfg.Format != "" {
		b.SetFormat(cfg.Format)
	}
	if cfg.File != "" {
		// 未配置的轮转参数沿用 xlog 默认值
		rotation := []xlog.RotationOption{xlog.WithMaxSize(cfg.MaxSizeMB), xlog.WithCompress(cfg.Compress)}
		if cfg.MaxBackups > 0 {
			rotation = append(rotation, xlog.WithMaxBackups(cfg.MaxBackups))
		}
		if cfg.MaxAgeDays > 0 {
			rotation = append(rotation, xlog.WithMaxAge(cfg.MaxAgeDays))
		}
		b.SetRotation(cfg.File, rotation...)
	} else {
		b.SetOutput(stderr)
	}
	return b.Build()
}

// watchLevel 在配置文件变更后应用新的 log.level。
func watchLevel(src xconf.Config, root xlog.LoggerWithLevel, logger xlog.Logger) (*xconf.Watcher, error) {
	return xconf.Watch(src, func(c xconf.Config, err error) {
		ctx := context.Background()
		if err != nil {
			logger.Warn(ctx, "config reload failed", xlog.Err(err))
			return
		}
		level, err := xlog.ParseLevel(c.String("log.level"))
		if err != nil {
			logger.Warn(ctx, "config reload ignored", xlog.Err(err))
			return
		}
		if level != root.GetLevel() {
			root.SetLevel(level)
			logger.Info(ctx, "log level changed", slog.String("level", level.String()))
		}
	})
}

func runJobs(ctx context.Context, src xconf.Config, cfg fileConfig, duration time.Duration, stderr io.Writer) (err error) {
	root, cleanup, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return &usageError{err: err}
	}
	defer func() { err = errors.Join(err, cleanup()) }()

	logger := root.With(slog.String("run_id", uuid.NewString()))
	stdLogger := xlog.ToSlog(logger)
	opts := []xexec.Option{xexec.WithLogger(logger), xexec.WithPoolLogger(stdLogger)}

	pool, err := xexec.NewLoggingExecutor(cfg.Pool, opts...)
	if err != nil {
		return err
	}
	sched, err := xexec.NewFailsafeScheduledExecutor(cfg.Scheduler, opts...)
	if err != nil {
		pool.ShutdownNow()
		return err
	}

	r := newRunner(pool, sched, logger)
	for _, j := range cfg.Jobs {
		if err := r.schedule(j); err != nil {
			sched.ShutdownNow()
			pool.ShutdownNow()
			return err
		}
	}

	watcher, err := watchLevel(src, root, logger)
	if err != nil {
		logger.Warn(ctx, "config watch disabled", xlog.Err(err))
	} else {
		defer func() { _ = watcher.Stop() }()
	}

	logger.Info(ctx, "xexecctl started", slog.Int("jobs", len(cfg.Jobs)), slog.String("config", src.Path()))
	err = xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithName("xexecctl"), xrun.WithLogger(stdLogger)},
		xrun.Elapsed(duration),
		xrun.Executor("scheduler", sched, cfg.ShutdownGrace),
		xrun.Executor("pool", pool, cfg.ShutdownGrace),
	)

	stats := pool.Stats()
	logger.Info(ctx, "xexecctl stopped",
		slog.Int64("completed", stats.CompletedTaskCount),
		slog.Int("largest_pool_size", stats.LargestPoolSize),
		slog.String("reason", stopReason(err)),
	)
	if errors.Is(err, xrun.ErrSignal) || errors.Is(err, xrun.ErrElapsed) {
		return nil
	}
	return err
}

func stopReason(err error) string {
	if err == nil {
		return "done"
	}
	return err.Error()
}
